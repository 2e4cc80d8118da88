package repository

import (
	"context"
	"fmt"
	"lingua_tutor_backend/internal/model"

	"gorm.io/gorm"
)

const lessonBatchSize = 50

type CurriculumRepository struct {
	DB *gorm.DB
}

func NewCurriculumRepository(db *gorm.DB) *CurriculumRepository {
	return &CurriculumRepository{DB: db}
}

// FindByUserID 返回课程及其周、课时（均按编号排序）
func (r *CurriculumRepository) FindByUserID(ctx context.Context, userID uint) (*model.Curriculum, error) {
	var curriculum model.Curriculum
	err := r.DB.WithContext(ctx).
		Preload("Weeks", func(db *gorm.DB) *gorm.DB {
			return db.Order("week_number ASC")
		}).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lesson_number ASC")
		}).
		Where("user_id = ?", userID).
		First(&curriculum).Error
	if err != nil {
		return nil, err
	}
	curriculum.AttachLessons()
	return &curriculum, nil
}

// CreateWithLessons 在一个事务中写入课程、周和全部课时
// user_id 唯一约束冲突时返回 gorm.ErrDuplicatedKey
func (r *CurriculumRepository) CreateWithLessons(ctx context.Context, userID uint, plan *model.CurriculumPlan) (*model.Curriculum, error) {
	curriculum := &model.Curriculum{
		UserID:         userID,
		TotalLessons:   plan.TotalLessons,
		WeeksDuration:  plan.WeeksDuration,
		LessonsPerWeek: plan.LessonsPerWeek,
		Summary:        plan.Summary,
		Source:         plan.Source,
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(curriculum).Error; err != nil {
			return err
		}

		weeks := make([]model.CurriculumWeek, 0, len(plan.Weeks))
		lessons := make([]model.Lesson, 0, plan.TotalLessons)
		for _, w := range plan.Weeks {
			weeks = append(weeks, model.CurriculumWeek{
				CurriculumID: curriculum.ID,
				WeekNumber:   w.WeekNumber,
				Theme:        w.Theme,
			})
			for _, l := range w.Lessons {
				lessons = append(lessons, model.Lesson{
					CurriculumID:    curriculum.ID,
					LessonNumber:    l.LessonNumber,
					WeekNumber:      w.WeekNumber,
					Title:           l.Title,
					Description:     l.Description,
					Objectives:      l.Objectives,
					Topics:          l.Topics,
					DurationMinutes: l.Duration,
				})
			}
		}

		if len(weeks) > 0 {
			if err := tx.CreateInBatches(&weeks, lessonBatchSize).Error; err != nil {
				return fmt.Errorf("create weeks: %w", err)
			}
		}
		if len(lessons) > 0 {
			if err := tx.CreateInBatches(&lessons, lessonBatchSize).Error; err != nil {
				return fmt.Errorf("create lessons: %w", err)
			}
		}

		curriculum.Weeks = weeks
		curriculum.Lessons = lessons
		return nil
	})
	if err != nil {
		return nil, err
	}

	curriculum.AttachLessons()
	return curriculum, nil
}

// FindLessonForUser 只返回属于该用户课程的课时
func (r *CurriculumRepository) FindLessonForUser(ctx context.Context, userID, lessonID uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.WithContext(ctx).
		Joins("JOIN curricula ON curricula.id = lessons.curriculum_id").
		Where("lessons.id = ? AND curricula.user_id = ?", lessonID, userID).
		First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}
