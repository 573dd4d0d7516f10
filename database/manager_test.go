package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:50"`
	Size int
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{Driver: "sqlite", DSN: "file::memory:", MaxOpenConns: 1}, nil, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown() })
	require.NoError(t, m.Migrate(context.Background(), &widget{}))
	return m
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Driver: "oracle", DSN: "x"}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Config{Driver: "sqlite"}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = Config{DSN: "chat.db"}
	cfg.ApplyDefaults()
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.NoError(t, cfg.Validate())
}

func TestNewManager_NilLogger(t *testing.T) {
	_, err := NewManager(Config{Driver: "sqlite", DSN: "file::memory:"}, nil, nil)
	assert.Error(t, err)
}

func TestManager_PingAndHealth(t *testing.T) {
	m := newTestManager(t)
	assert.NoError(t, m.Ping(context.Background()))

	hc := NewHealthChecker(m)
	assert.Equal(t, "database", hc.Name())
	assert.True(t, hc.Critical())
	assert.NoError(t, hc.Check(context.Background()))
}

func TestBaseRepository_CRUD(t *testing.T) {
	m := newTestManager(t)
	repo := NewBaseRepository[widget](m.DB())
	ctx := context.Background()

	w := &widget{Name: "gear", Size: 3}
	require.NoError(t, repo.Create(ctx, w))
	assert.NotZero(t, w.ID)

	got, err := repo.FindByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "gear", got.Name)

	got, err = repo.FindOne(ctx, "name = ?", "gear")
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)

	require.NoError(t, repo.UpdateColumns(ctx, w.ID, map[string]any{"size": 9}))
	got, _ = repo.FindByID(ctx, w.ID)
	assert.Equal(t, 9, got.Size)

	exists, err := repo.Exists(ctx, "name = ?", "gear")
	require.NoError(t, err)
	assert.True(t, exists)

	n, err := repo.Count(ctx, "size > ?", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.Delete(ctx, w.ID))
	_, err = repo.FindByID(ctx, w.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, w.ID), ErrRecordNotFound)
	assert.ErrorIs(t, repo.UpdateColumns(ctx, w.ID, map[string]any{"size": 1}), ErrRecordNotFound)
}

func TestBaseRepository_DuplicateKey(t *testing.T) {
	m := newTestManager(t)
	repo := NewBaseRepository[widget](m.DB())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &widget{Name: "bolt"}))
	err := repo.Create(ctx, &widget{Name: "bolt"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.True(t, IsDuplicateKey(err))
}

type recordingQueries struct {
	mu  sync.Mutex
	ops []string
}

func (r *recordingQueries) ObserveQuery(operation, table string, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, operation+":"+table)
}

func TestMetricsPlugin_ObservesStatements(t *testing.T) {
	m := newTestManager(t)
	obs := &recordingQueries{}
	require.NoError(t, m.Use(NewMetricsPlugin(obs)))

	repo := NewBaseRepository[widget](m.DB())
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &widget{Name: "nut"}))
	_, err := repo.FindOne(ctx, "name = ?", "nut")
	require.NoError(t, err)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Contains(t, obs.ops, "create:widgets")
	assert.Contains(t, obs.ops, "select:widgets")
}
