package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lingua_tutor_backend/internal/model"
	"lingua_tutor_backend/internal/util"
)

type curriculumFixture struct {
	users     *memUserStore
	profiles  *memProfileStore
	curricula *memCurriculumStore
	provider  *fakeProvider
	svc       *CurriculumService
}

func newCurriculumFixture(t *testing.T) *curriculumFixture {
	t.Helper()
	f := &curriculumFixture{
		users:     newMemUserStore(),
		curricula: newMemCurriculumStore(),
		provider:  &fakeProvider{},
	}
	f.profiles = newMemProfileStore(f.users)
	f.svc = NewCurriculumService(f.users, f.profiles, f.curricula, f.provider, NewIntroCache(nil))
	return f
}

func (f *curriculumFixture) addUser(t *testing.T, email string, profile *model.Profile) uint {
	t.Helper()
	user := &model.User{Email: email}
	require.NoError(t, f.users.Create(context.Background(), user))
	if profile != nil {
		profile.UserID = user.ID
		_, err := f.profiles.Upsert(context.Background(), profile)
		require.NoError(t, err)
	}
	return user.ID
}

func TestGenerateCurriculum_FallbackWhenProviderUnavailable(t *testing.T) {
	f := newCurriculumFixture(t)
	userID := f.addUser(t, "ines@example.com", testProfile(model.FrequencyDaily, 4))

	c, created, err := f.svc.GenerateCurriculum(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.CurriculumSourceFallback, c.Source)
	assert.Equal(t, 20, c.TotalLessons)
	assert.Len(t, c.Lessons, 20)
	require.Len(t, c.Weeks, 4)
	assert.Len(t, c.Weeks[2].Lessons, 5)
	assert.Zero(t, f.provider.calls)
}

func TestGenerateCurriculum_UsesProvider(t *testing.T) {
	f := newCurriculumFixture(t)
	f.provider.available = true
	f.provider.response = providerPlanJSON
	userID := f.addUser(t, "jules@example.com", testProfile(model.FrequencyTwiceWeek, 2))

	c, created, err := f.svc.GenerateCurriculum(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.CurriculumSourceProvider, c.Source)
	assert.Equal(t, 4, c.TotalLessons)
	assert.Equal(t, "Salutations", c.Lessons[0].Title)
}

func TestGenerateCurriculum_ProviderErrorFallsBack(t *testing.T) {
	f := newCurriculumFixture(t)
	f.provider.available = true
	f.provider.err = errors.New("503 service unavailable")
	userID := f.addUser(t, "karim@example.com", testProfile(model.FrequencyThreeWeek, 3))

	c, created, err := f.svc.GenerateCurriculum(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, model.CurriculumSourceFallback, c.Source)
	assert.Equal(t, 9, c.TotalLessons)
	assert.Equal(t, 1, f.provider.calls)
}

func TestGenerateCurriculum_RejectsOversizedTimeline(t *testing.T) {
	f := newCurriculumFixture(t)
	userID := f.addUser(t, "noah@example.com", testProfile(model.FrequencyTwiceWeek, 1<<62))

	_, created, err := f.svc.GenerateCurriculum(context.Background(), userID)
	assert.ErrorIs(t, err, util.ErrInvalidProfile)
	assert.False(t, created)

	_, err = f.curricula.FindByUserID(context.Background(), userID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGenerateCurriculum_Idempotent(t *testing.T) {
	f := newCurriculumFixture(t)
	userID := f.addUser(t, "lea@example.com", testProfile(model.FrequencyDaily, 4))
	ctx := context.Background()

	first, created, err := f.svc.GenerateCurriculum(ctx, userID)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := f.svc.GenerateCurriculum(ctx, userID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.curricula.creates)
}

func TestGenerateCurriculum_ConcurrentDuplicateReturnsWinner(t *testing.T) {
	f := newCurriculumFixture(t)
	userID := f.addUser(t, "marc@example.com", testProfile(model.FrequencyDaily, 4))

	// 另一个请求在预检查之后抢先写入
	var winnerID string
	f.curricula.beforeCreate = func(uid uint) {
		f.curricula.beforeCreate = nil
		c, err := f.curricula.CreateWithLessons(context.Background(), uid, FallbackPlan(testProfile(model.FrequencyOnceWeekly, 2)))
		require.NoError(t, err)
		winnerID = c.ID
	}

	c, created, err := f.svc.GenerateCurriculum(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winnerID, c.ID)
	assert.Equal(t, 1, f.curricula.creates)
}

func TestGenerateCurriculum_ParallelRequestsPersistOnce(t *testing.T) {
	f := newCurriculumFixture(t)
	userID := f.addUser(t, "nina@example.com", testProfile(model.FrequencyDaily, 4))

	var wg sync.WaitGroup
	ids := make([]string, 8)
	createdCount := 0
	var mu sync.Mutex
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, created, err := f.svc.GenerateCurriculum(context.Background(), userID)
			if !assert.NoError(t, err) {
				return
			}
			ids[i] = c.ID
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, createdCount)
	assert.Equal(t, 1, f.curricula.creates)
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestGenerateCurriculum_ProfileErrors(t *testing.T) {
	f := newCurriculumFixture(t)
	ctx := context.Background()

	noProfile := f.addUser(t, "olga@example.com", nil)
	_, _, err := f.svc.GenerateCurriculum(ctx, noProfile)
	assert.ErrorIs(t, err, util.ErrProfileNotFound)

	bad := testProfile("monthly", 0)
	badUser := f.addUser(t, "paul@example.com", bad)
	_, _, err = f.svc.GenerateCurriculum(ctx, badUser)
	assert.ErrorIs(t, err, util.ErrInvalidProfile)
	assert.Zero(t, f.curricula.creates)
}

func TestGenerateCurriculum_StoreFailurePropagates(t *testing.T) {
	f := newCurriculumFixture(t)
	f.curricula.createErr = errors.New("disk full")
	userID := f.addUser(t, "quentin@example.com", testProfile(model.FrequencyDaily, 1))

	_, _, err := f.svc.GenerateCurriculum(context.Background(), userID)
	assert.EqualError(t, err, "disk full")
}

func TestGetCurriculum_NotFound(t *testing.T) {
	f := newCurriculumFixture(t)
	_, err := f.svc.GetCurriculum(context.Background(), 99)
	assert.ErrorIs(t, err, util.ErrCurriculumNotFound)
}

func TestTutorIntroduction(t *testing.T) {
	f := newCurriculumFixture(t)
	profile := testProfile(model.FrequencyDaily, 4)
	profile.TutorPersonality = model.PersonalityFormal
	userID := f.addUser(t, "rose@example.com", profile)

	intro, err := f.svc.TutorIntroduction(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Amélie", intro.TutorName)
	assert.Equal(t, model.PersonalityFormal, intro.Personality)
	assert.Equal(t, FallbackIntroduction(model.PersonalityFormal, "rose"), intro.Introduction)
	assert.Contains(t, intro.Introduction, "Good day, rose.")

	f.provider.available = true
	f.provider.response = "  Bonjour rose, ready to start?  "
	intro, err = f.svc.TutorIntroduction(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour rose, ready to start?", intro.Introduction)
	assert.Equal(t, model.PersonalityFormal, intro.Personality)
	assert.Equal(t, 500, f.provider.maxTokens)
}

func TestTutorIntroduction_CachesOnlyProviderText(t *testing.T) {
	f := newCurriculumFixture(t)
	cache := newMemIntroStore()
	f.svc.Intro = cache
	userID := f.addUser(t, "paul@example.com", testProfile(model.FrequencyDaily, 4))
	ctx := context.Background()

	f.provider.available = true
	f.provider.err = errors.New("timeout")
	intro, err := f.svc.TutorIntroduction(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, FallbackIntroduction(model.PersonalityEncouraging, "paul"), intro.Introduction)
	_, cached := cache.Get(ctx, userID)
	assert.False(t, cached)

	f.provider.err = nil
	f.provider.response = "Bonjour paul!"
	intro, err = f.svc.TutorIntroduction(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour paul!", intro.Introduction)
	assert.Equal(t, 2, f.provider.calls)

	stored, cached := cache.Get(ctx, userID)
	require.True(t, cached)
	assert.Equal(t, "Bonjour paul!", stored)

	f.provider.response = "something else"
	intro, err = f.svc.TutorIntroduction(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour paul!", intro.Introduction)
	assert.Equal(t, 2, f.provider.calls)
}

func TestTutorIntroduction_BlankProviderTextNotCached(t *testing.T) {
	f := newCurriculumFixture(t)
	cache := newMemIntroStore()
	f.svc.Intro = cache
	userID := f.addUser(t, "zoe@example.com", testProfile(model.FrequencyDaily, 4))

	f.provider.available = true
	f.provider.response = "   "
	intro, err := f.svc.TutorIntroduction(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, FallbackIntroduction(model.PersonalityEncouraging, "zoe"), intro.Introduction)
	_, cached := cache.Get(context.Background(), userID)
	assert.False(t, cached)
}

func TestBuildIntroductionPrompt(t *testing.T) {
	p := testProfile(model.FrequencyDaily, 6)
	p.LearningGoal = model.GoalTourism
	prompt := buildIntroductionPrompt(p, "sam")
	assert.Contains(t, prompt, "a student named sam")
	assert.Contains(t, prompt, "learning French for tourism and travel")
	assert.Contains(t, prompt, "reach A1 level in 6 weeks")
}
