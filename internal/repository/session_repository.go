package repository

import (
	"context"
	"lingua_tutor_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.LessonSession) error {
	return r.DB.WithContext(ctx).Create(session).Error
}

func (r *SessionRepository) FindByIDForUser(ctx context.Context, userID, sessionID uint) (*model.LessonSession, error) {
	var session model.LessonSession
	err := r.DB.WithContext(ctx).
		Preload("Lesson").
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Complete 结束会话并标记课时完成，二者在同一事务中
func (r *SessionRepository) Complete(ctx context.Context, session *model.LessonSession, completedAt time.Time, minutes int) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.LessonSession{}).
			Where("id = ? AND completed_at IS NULL", session.ID).
			Updates(map[string]interface{}{
				"completed_at":     completedAt,
				"duration_minutes": minutes,
			})
		if res.Error != nil {
			return res.Error
		}
		// 已被并发请求完成
		if res.RowsAffected == 0 {
			return tx.First(session, session.ID).Error
		}

		if err := tx.Model(&model.Lesson{}).
			Where("id = ? AND completed = ?", session.LessonID, false).
			Updates(map[string]interface{}{
				"completed":    true,
				"completed_at": completedAt,
			}).Error; err != nil {
			return err
		}

		session.CompletedAt = &completedAt
		session.DurationMinutes = minutes
		return nil
	})
}

// FindRecent 按开始时间倒序返回最近的会话（含课时）
func (r *SessionRepository) FindRecent(ctx context.Context, userID uint, limit int) ([]model.LessonSession, error) {
	var sessions []model.LessonSession
	err := r.DB.WithContext(ctx).
		Preload("Lesson").
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

// CompletionTimes 已完成会话的完成时间，倒序
func (r *SessionRepository) CompletionTimes(ctx context.Context, userID uint) ([]time.Time, error) {
	var times []time.Time
	err := r.DB.WithContext(ctx).
		Model(&model.LessonSession{}).
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").
		Pluck("completed_at", &times).Error
	return times, err
}
