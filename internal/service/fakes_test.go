package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"lingua_tutor_backend/internal/model"
	"lingua_tutor_backend/internal/repository"
)

type memUserStore struct {
	mu     sync.RWMutex
	nextID uint
	users  map[uint]*model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[uint]*model.User{}}
}

func (m *memUserStore) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUserStore) FindByID(_ context.Context, id uint) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserStore) UpdateLastLogin(_ context.Context, userID uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LastLogin = &at
	return nil
}

type memProfileStore struct {
	mu       sync.RWMutex
	profiles map[uint]*model.Profile
	users    *memUserStore
}

func newMemProfileStore(users *memUserStore) *memProfileStore {
	return &memProfileStore{profiles: map[uint]*model.Profile{}, users: users}
}

func (m *memProfileStore) FindByUserID(_ context.Context, userID uint) (*model.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfileStore) Upsert(_ context.Context, profile *model.Profile) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.profiles[profile.UserID]
	cp := *profile
	m.profiles[profile.UserID] = &cp
	if !exists && m.users != nil {
		m.users.mu.Lock()
		if u, ok := m.users.users[profile.UserID]; ok {
			u.OnboardingCompleted = true
		}
		m.users.mu.Unlock()
	}
	return !exists, nil
}

type memCurriculumStore struct {
	mu        sync.Mutex
	byUser    map[uint]*model.Curriculum
	nextID    uint
	creates   int
	createErr error
	// 写入前回调，用于模拟并发写入
	beforeCreate func(userID uint)
}

func newMemCurriculumStore() *memCurriculumStore {
	return &memCurriculumStore{byUser: map[uint]*model.Curriculum{}}
}

func (m *memCurriculumStore) FindByUserID(_ context.Context, userID uint) (*model.Curriculum, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byUser[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	cp.Lessons = append([]model.Lesson(nil), c.Lessons...)
	cp.Weeks = append([]model.CurriculumWeek(nil), c.Weeks...)
	cp.AttachLessons()
	return &cp, nil
}

func (m *memCurriculumStore) CreateWithLessons(_ context.Context, userID uint, plan *model.CurriculumPlan) (*model.Curriculum, error) {
	if m.beforeCreate != nil {
		m.beforeCreate(userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, ok := m.byUser[userID]; ok {
		return nil, gorm.ErrDuplicatedKey
	}
	m.creates++
	c := curriculumFromPlan(userID, plan)
	c.ID = model.GenerateUUID()
	for i := range c.Lessons {
		m.nextID++
		c.Lessons[i].ID = m.nextID
		c.Lessons[i].CurriculumID = c.ID
	}
	m.byUser[userID] = c
	cp := *c
	cp.AttachLessons()
	return &cp, nil
}

func (m *memCurriculumStore) FindLessonForUser(_ context.Context, userID, lessonID uint) (*model.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byUser[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for _, l := range c.Lessons {
		if l.ID == lessonID {
			cp := l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memCurriculumStore) markCompleted(lessonID uint, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byUser {
		for i := range c.Lessons {
			if c.Lessons[i].ID == lessonID && !c.Lessons[i].Completed {
				c.Lessons[i].Completed = true
				c.Lessons[i].CompletedAt = &at
			}
		}
	}
}

func curriculumFromPlan(userID uint, plan *model.CurriculumPlan) *model.Curriculum {
	c := &model.Curriculum{
		UserID:         userID,
		TotalLessons:   plan.TotalLessons,
		WeeksDuration:  plan.WeeksDuration,
		LessonsPerWeek: plan.LessonsPerWeek,
		Summary:        plan.Summary,
		Source:         plan.Source,
	}
	for _, w := range plan.Weeks {
		c.Weeks = append(c.Weeks, model.CurriculumWeek{WeekNumber: w.WeekNumber, Theme: w.Theme})
		for _, l := range w.Lessons {
			c.Lessons = append(c.Lessons, model.Lesson{
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
	return c
}

type memSessionStore struct {
	mu        sync.Mutex
	nextID    uint
	sessions  []*model.LessonSession
	curricula *memCurriculumStore
}

func newMemSessionStore(curricula *memCurriculumStore) *memSessionStore {
	return &memSessionStore{curricula: curricula}
}

func (m *memSessionStore) Create(_ context.Context, session *model.LessonSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	session.ID = m.nextID
	cp := *session
	m.sessions = append(m.sessions, &cp)
	return nil
}

func (m *memSessionStore) FindByIDForUser(_ context.Context, userID, sessionID uint) (*model.LessonSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.ID == sessionID && s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memSessionStore) Complete(_ context.Context, session *model.LessonSession, completedAt time.Time, minutes int) error {
	m.mu.Lock()
	var stored *model.LessonSession
	for _, s := range m.sessions {
		if s.ID == session.ID {
			stored = s
		}
	}
	if stored == nil {
		m.mu.Unlock()
		return gorm.ErrRecordNotFound
	}
	if stored.CompletedAt != nil {
		*session = *stored
		m.mu.Unlock()
		return nil
	}
	stored.CompletedAt = &completedAt
	stored.DurationMinutes = minutes
	*session = *stored
	m.mu.Unlock()

	if m.curricula != nil {
		m.curricula.markCompleted(session.LessonID, completedAt)
	}
	return nil
}

func (m *memSessionStore) FindRecent(_ context.Context, userID uint, limit int) ([]model.LessonSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.LessonSession
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memSessionStore) CompletionTimes(_ context.Context, userID uint) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []time.Time
	for _, s := range m.sessions {
		if s.UserID == userID && s.CompletedAt != nil {
			out = append(out, *s.CompletedAt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out, nil
}

type memKnowledgeStore struct {
	mu     sync.Mutex
	nextID uint
	items  []*model.KnowledgeItem
}

func (m *memKnowledgeStore) List(_ context.Context, userID uint, filter repository.KnowledgeFilter) ([]model.KnowledgeItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.KnowledgeItem
	// 倒序模拟按创建时间排序
	for i := len(m.items) - 1; i >= 0; i-- {
		it := m.items[i]
		if it.UserID != userID {
			continue
		}
		if filter.Type != "" && it.KnowledgeType != filter.Type {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(it.Content), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *it)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *memKnowledgeStore) Count(_ context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, it := range m.items {
		if it.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memKnowledgeStore) Record(_ context.Context, item *model.KnowledgeItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.UserID == item.UserID && it.KnowledgeType == item.KnowledgeType && it.Content == item.Content {
			it.PracticeCount++
			it.ConfidenceScore = item.ConfidenceScore
			*item = *it
			return false, nil
		}
	}
	m.nextID++
	item.ID = m.nextID
	item.PracticeCount = 1
	cp := *item
	m.items = append(m.items, &cp)
	return true, nil
}

type memIntroStore struct {
	mu     sync.Mutex
	intros map[uint]string
}

func newMemIntroStore() *memIntroStore {
	return &memIntroStore{intros: map[uint]string{}}
}

func (m *memIntroStore) Get(_ context.Context, userID uint) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	intro, ok := m.intros[userID]
	return intro, ok
}

func (m *memIntroStore) Set(_ context.Context, userID uint, intro string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intros[userID] = intro
}

func (m *memIntroStore) Invalidate(_ context.Context, userID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.intros, userID)
}
