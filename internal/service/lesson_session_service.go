package service

import (
	"context"
	"errors"
	"fmt"
	"lingua_tutor_backend/internal/model"
	"lingua_tutor_backend/internal/util"
	"lingua_tutor_backend/pkg/logger"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LessonSessionService 记录学习会话与知识点，维护课时完成状态
type LessonSessionService struct {
	Curricula CurriculumStore
	Sessions  SessionStore
	Knowledge KnowledgeStore
	now       func() time.Time
}

func NewLessonSessionService(curricula CurriculumStore, sessions SessionStore, knowledge KnowledgeStore) *LessonSessionService {
	return &LessonSessionService{
		Curricula: curricula,
		Sessions:  sessions,
		Knowledge: knowledge,
		now:       time.Now,
	}
}

func (s *LessonSessionService) StartSession(ctx context.Context, userID, lessonID uint) (*model.LessonSession, error) {
	lesson, err := s.Curricula.FindLessonForUser(ctx, userID, lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}

	session := &model.LessonSession{
		UserID:    userID,
		LessonID:  lesson.ID,
		StartedAt: s.now(),
	}
	if err := s.Sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	session.Lesson = lesson
	return session, nil
}

// CompleteSession 重复完成返回已保存的会话
func (s *LessonSessionService) CompleteSession(ctx context.Context, userID, sessionID uint) (*model.LessonSession, error) {
	session, err := s.Sessions.FindByIDForUser(ctx, userID, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if session.CompletedAt != nil {
		return session, nil
	}

	completedAt := s.now()
	minutes := SessionMinutes(session.StartedAt, completedAt)
	if err := s.Sessions.Complete(ctx, session, completedAt, minutes); err != nil {
		return nil, err
	}

	logger.Log.Info("Lesson session completed",
		zap.Uint("userID", userID),
		zap.Uint("lessonID", session.LessonID),
		zap.Int("minutes", session.DurationMinutes))
	return session, nil
}

// SessionMinutes 向上取整，至少 1 分钟
func SessionMinutes(start, end time.Time) int {
	minutes := int(math.Ceil(end.Sub(start).Minutes()))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// KnowledgeInput 记录知识点参数
type KnowledgeInput struct {
	KnowledgeType   model.KnowledgeType `json:"knowledgeType" binding:"required"`
	Content         string              `json:"content" binding:"required"`
	Translation     string              `json:"translation"`
	Context         string              `json:"context"`
	ConfidenceScore float64             `json:"confidenceScore"`
	LessonID        *uint               `json:"lessonId"`
}

// RecordKnowledge 已有相同条目时累加练习次数，created 为 false
func (s *LessonSessionService) RecordKnowledge(ctx context.Context, userID uint, in KnowledgeInput) (*model.KnowledgeItem, bool, error) {
	content := strings.TrimSpace(in.Content)
	switch {
	case !in.KnowledgeType.Valid():
		return nil, false, fmt.Errorf("%w: unknown type %q", util.ErrInvalidKnowledge, in.KnowledgeType)
	case content == "":
		return nil, false, fmt.Errorf("%w: content is required", util.ErrInvalidKnowledge)
	case in.ConfidenceScore < 0 || in.ConfidenceScore > 1:
		return nil, false, fmt.Errorf("%w: confidence must be within [0,1]", util.ErrInvalidKnowledge)
	}

	if in.LessonID != nil {
		if _, err := s.Curricula.FindLessonForUser(ctx, userID, *in.LessonID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, util.ErrLessonNotFound
			}
			return nil, false, err
		}
	}

	item := &model.KnowledgeItem{
		UserID:          userID,
		KnowledgeType:   in.KnowledgeType,
		Content:         content,
		Translation:     strings.TrimSpace(in.Translation),
		Context:         strings.TrimSpace(in.Context),
		ConfidenceScore: in.ConfidenceScore,
		LessonID:        in.LessonID,
	}
	created, err := s.Knowledge.Record(ctx, item)
	if err != nil {
		return nil, false, err
	}
	return item, created, nil
}
