package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"lingua_tutor_backend/internal/config"
)

func TestDialectorSelectsDriver(t *testing.T) {
	cases := map[string]string{
		"":         "mysql",
		"mysql":    "mysql",
		"postgres": "postgres",
		"sqlite":   "sqlite",
	}
	for driver, want := range cases {
		d, err := Dialector(&config.DatabaseConfig{Driver: driver, Path: ":memory:"})
		require.NoError(t, err, driver)
		assert.Equal(t, want, d.Name())
	}

	_, err := Dialector(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestMigrateSQLite(t *testing.T) {
	d, err := Dialector(&config.DatabaseConfig{Driver: "sqlite", Path: "file:migrate_test?mode=memory&cache=shared"})
	require.NoError(t, err)
	db, err := Open(d, gormlogger.Silent)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	for _, table := range []string{"users", "user_profiles", "curricula", "curriculum_weeks", "lessons", "lesson_sessions", "user_knowledge"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
