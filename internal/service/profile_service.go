package service

import (
	"context"
	"errors"
	"fmt"
	"lingua_tutor_backend/internal/model"
	"lingua_tutor_backend/internal/util"
	"lingua_tutor_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultTargetLanguage = "french"

type ProfileService struct {
	Profiles ProfileStore
	Intro    IntroStore
}

func NewProfileService(profiles ProfileStore, intro IntroStore) *ProfileService {
	return &ProfileService{Profiles: profiles, Intro: intro}
}

// ProfileInput 档案提交参数
type ProfileInput struct {
	TargetLanguage   string                 `json:"targetLanguage"`
	CurrentLevel     model.Level            `json:"currentLevel" binding:"required"`
	LearningGoal     model.LearningGoal     `json:"learningGoal" binding:"required"`
	TimelineWeeks    int                    `json:"timelineWeeks" binding:"required"`
	StudyFrequency   model.StudyFrequency   `json:"studyFrequency" binding:"required"`
	SessionDuration  int                    `json:"sessionDuration" binding:"required"`
	IncludesHomework bool                   `json:"includesHomework"`
	TutorPersonality model.TutorPersonality `json:"tutorPersonality" binding:"required"`
}

func (s *ProfileService) Get(ctx context.Context, userID uint) (*model.Profile, error) {
	profile, err := s.Profiles.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProfileNotFound
	}
	return profile, err
}

// Upsert 首次提交创建档案（created=true），之后更新
func (s *ProfileService) Upsert(ctx context.Context, userID uint, in ProfileInput) (*model.Profile, bool, error) {
	profile := &model.Profile{
		UserID:           userID,
		TargetLanguage:   in.TargetLanguage,
		CurrentLevel:     in.CurrentLevel,
		LearningGoal:     in.LearningGoal,
		TimelineWeeks:    in.TimelineWeeks,
		StudyFrequency:   in.StudyFrequency,
		SessionDuration:  in.SessionDuration,
		IncludesHomework: in.IncludesHomework,
		TutorPersonality: in.TutorPersonality,
	}
	if profile.TargetLanguage == "" {
		profile.TargetLanguage = defaultTargetLanguage
	}
	if err := profile.Validate(); err != nil {
		return nil, false, fmt.Errorf("%w: %v", util.ErrInvalidProfile, err)
	}

	created, err := s.Profiles.Upsert(ctx, profile)
	if err != nil {
		return nil, false, err
	}

	if !created {
		s.Intro.Invalidate(ctx, userID)
	}
	logger.Log.Info("Profile saved", zap.Uint("userID", userID), zap.Bool("created", created))
	return profile, created, nil
}
