package repository

import (
	"context"
	"errors"
	"lingua_tutor_backend/internal/model"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID uint) (*model.Profile, error) {
	var profile model.Profile
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert 创建或更新档案；首次创建时同一事务内标记用户完成引导
func (r *ProfileRepository) Upsert(ctx context.Context, profile *model.Profile) (bool, error) {
	created := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Profile
		err := tx.Where("user_id = ?", profile.UserID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(profile).Error; err != nil {
				return err
			}
			created = true
			return tx.Model(&model.User{}).
				Where("id = ?", profile.UserID).
				Update("onboarding_completed", true).
				Error
		case err != nil:
			return err
		}

		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		return tx.Model(&existing).Select(
			"target_language", "current_level", "learning_goal", "timeline_weeks",
			"study_frequency", "session_duration", "includes_homework", "tutor_personality",
		).Updates(profile).Error
	})
	return created, err
}
