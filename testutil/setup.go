package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/studymate/server/cache"
	"github.com/studymate/server/config"
	dbadapter "github.com/studymate/server/db"
	"github.com/studymate/server/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB creates a private in-memory SQLite DB and runs AutoMigrate.
// Each test gets its own named database, so parallel tests do not share rows.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := dbadapter.Open(config.DatabaseConfig{
		Mode:       dbadapter.ModeSQLite,
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err, "SetupTestDB: Open")

	sqlDB, err := db.DB()
	require.NoError(t, err, "SetupTestDB: DB")
	// A single connection keeps the in-memory database alive and serialises
	// writers the way SQLite wants.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	return db
}

// SetupTestCache creates a LocalCache (no Redis required).
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewCache(config.CacheConfig{}) // empty RedisAddr → LocalCache
	require.NoError(t, err, "SetupTestCache: NewCache")
	return c
}

// CreateStudent inserts a student with a linked user account.
func CreateStudent(t *testing.T, db *gorm.DB, name string) *model.Student {
	t.Helper()
	u := &model.User{Username: name, PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	s := &model.Student{UserID: &u.ID, Name: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(s).Error)
	return s
}
