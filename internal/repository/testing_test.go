package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lingua_tutor_backend/internal/config"
	"lingua_tutor_backend/internal/model"
	"lingua_tutor_backend/pkg/database"
)

// newTestDB 每个测试独立的内存 SQLite
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	d, err := database.Dialector(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)

	db, err := database.Open(d, gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Password: "hash"}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func samplePlan(weeks, perWeek int) *model.CurriculumPlan {
	plan := &model.CurriculumPlan{
		TotalLessons:   weeks * perWeek,
		WeeksDuration:  weeks,
		LessonsPerWeek: perWeek,
		Summary:        "test plan",
		Source:         model.CurriculumSourceFallback,
	}
	n := 1
	for w := 1; w <= weeks; w++ {
		week := model.PlanWeek{WeekNumber: w, Theme: fmt.Sprintf("Theme %d", w)}
		for i := 0; i < perWeek; i++ {
			week.Lessons = append(week.Lessons, model.PlanLesson{
				LessonNumber: n,
				Title:        fmt.Sprintf("Lesson %d", n),
				Description:  fmt.Sprintf("Lesson %d: Lesson %d", n, n),
				Objectives:   []string{"Learn key vocabulary"},
				Duration:     30,
				Topics:       []string{"Vocabulary", "Grammar", "Practice"},
			})
			n++
		}
		plan.Weeks = append(plan.Weeks, week)
	}
	return plan
}
