package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email);`
	require.NoError(t, db.Exec(users).Error)

	return db
}

// memorySessions is an in-memory stand-in for the Redis session manager.
type memorySessions struct {
	mu      sync.Mutex
	active  map[string]uuid.UUID
	creates int
	revokes int
}

func newMemorySessions() *memorySessions {
	return &memorySessions{active: map[string]uuid.UUID{}}
}

func (m *memorySessions) Create(_ context.Context, accessID string, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[accessID] = userID
	m.creates++
	return nil
}

func (m *memorySessions) Revoke(_ context.Context, accessID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, accessID)
	m.revokes++
	return nil
}
