package repository

import (
	"context"
	"errors"
	"lingua_tutor_backend/internal/model"
	"strings"

	"gorm.io/gorm"
)

// KnowledgeFilter 知识库查询条件
type KnowledgeFilter struct {
	Type   model.KnowledgeType
	Search string
	Limit  int
}

type KnowledgeRepository struct {
	DB *gorm.DB
}

func NewKnowledgeRepository(db *gorm.DB) *KnowledgeRepository {
	return &KnowledgeRepository{DB: db}
}

// 搜索词中的 LIKE 通配符按字面匹配
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// List 按创建时间倒序；Search 对内容做不区分大小写的包含匹配
func (r *KnowledgeRepository) List(ctx context.Context, userID uint, filter KnowledgeFilter) ([]model.KnowledgeItem, error) {
	query := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Type != "" {
		query = query.Where("knowledge_type = ?", filter.Type)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where("LOWER(content) LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(strings.ToLower(s))+"%")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var items []model.KnowledgeItem
	err := query.Order("created_at DESC").Order("id DESC").Find(&items).Error
	return items, err
}

func (r *KnowledgeRepository) Count(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.KnowledgeItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// Record 同一用户相同类型和内容的条目累加练习次数，否则新建
func (r *KnowledgeRepository) Record(ctx context.Context, item *model.KnowledgeItem) (bool, error) {
	created := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.KnowledgeItem
		err := tx.Where("user_id = ? AND knowledge_type = ? AND content = ?", item.UserID, item.KnowledgeType, item.Content).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			item.PracticeCount = 1
			created = true
			return tx.Create(item).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"practice_count":   gorm.Expr("practice_count + ?", 1),
			"confidence_score": item.ConfidenceScore,
		}
		if item.Translation != "" {
			updates["translation"] = item.Translation
		}
		if item.Context != "" {
			updates["context"] = item.Context
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(item, existing.ID).Error
	})
	return created, err
}
