package service

import (
	"context"
	"lingua_tutor_backend/internal/model"
	"lingua_tutor_backend/internal/repository"
	"time"
)

// 服务依赖的存储接口，由 repository 包实现，测试中用内存实现替换

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
}

type ProfileStore interface {
	FindByUserID(ctx context.Context, userID uint) (*model.Profile, error)
	Upsert(ctx context.Context, profile *model.Profile) (bool, error)
}

type CurriculumStore interface {
	FindByUserID(ctx context.Context, userID uint) (*model.Curriculum, error)
	CreateWithLessons(ctx context.Context, userID uint, plan *model.CurriculumPlan) (*model.Curriculum, error)
	FindLessonForUser(ctx context.Context, userID, lessonID uint) (*model.Lesson, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *model.LessonSession) error
	FindByIDForUser(ctx context.Context, userID, sessionID uint) (*model.LessonSession, error)
	Complete(ctx context.Context, session *model.LessonSession, completedAt time.Time, minutes int) error
	FindRecent(ctx context.Context, userID uint, limit int) ([]model.LessonSession, error)
	CompletionTimes(ctx context.Context, userID uint) ([]time.Time, error)
}

type KnowledgeStore interface {
	List(ctx context.Context, userID uint, filter repository.KnowledgeFilter) ([]model.KnowledgeItem, error)
	Count(ctx context.Context, userID uint) (int64, error)
	Record(ctx context.Context, item *model.KnowledgeItem) (bool, error)
}

// IntroStore 导师开场白缓存
type IntroStore interface {
	Get(ctx context.Context, userID uint) (string, bool)
	Set(ctx context.Context, userID uint, intro string)
	Invalidate(ctx context.Context, userID uint)
}

var (
	_ IntroStore      = (*IntroCache)(nil)
	_ UserStore       = (*repository.UserRepository)(nil)
	_ ProfileStore    = (*repository.ProfileRepository)(nil)
	_ CurriculumStore = (*repository.CurriculumRepository)(nil)
	_ SessionStore    = (*repository.SessionRepository)(nil)
	_ KnowledgeStore  = (*repository.KnowledgeRepository)(nil)
)
