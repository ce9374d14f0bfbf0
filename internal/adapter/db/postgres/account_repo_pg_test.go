package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"footix-auth-service/internal/domain/account"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Every pooled connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&AccountSchema{}))
	return db
}

func countByEmail(t *testing.T, db *gorm.DB, email string) int64 {
	var n int64
	require.NoError(t, db.Model(&AccountSchema{}).Where("email = ?", email).Count(&n).Error)
	return n
}

func TestAccountRepoPG_Insert_ReturnsRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepoPG(db, zaptest.NewLogger(t))

	acc, err := repo.Insert(context.Background(), "Alice", "a@x.com", "p1")
	require.NoError(t, err)

	assert.NotZero(t, acc.ID)
	assert.Equal(t, "Alice", acc.Name)
	assert.Equal(t, "a@x.com", acc.Email)
	assert.Equal(t, "p1", acc.Password)

	var stored AccountSchema
	require.NoError(t, db.First(&stored, acc.ID).Error)
	assert.Equal(t, "Alice", stored.Name)
	assert.Equal(t, "p1", stored.Password)
}

func TestAccountRepoPG_Insert_FreshIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepoPG(db, zaptest.NewLogger(t))

	seen := make(map[int64]bool)
	for i := 0; i < 5; i++ {
		acc, err := repo.Insert(context.Background(), "User", fmt.Sprintf("u%d@x.com", i), "p")
		require.NoError(t, err)
		assert.False(t, seen[acc.ID], "id %d reused", acc.ID)
		seen[acc.ID] = true
	}
}

func TestAccountRepoPG_Insert_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepoPG(db, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := repo.Insert(ctx, "Alice", "a@x.com", "p1")
	require.NoError(t, err)

	acc, err := repo.Insert(ctx, "Alice Again", "a@x.com", "p2")
	require.Error(t, err)
	assert.Nil(t, acc)
	assert.ErrorIs(t, err, account.ErrDuplicateEmail)

	assert.Equal(t, int64(1), countByEmail(t, db, "a@x.com"))
}

func TestAccountRepoPG_Insert_EmailIsCaseSensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepoPG(db, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := repo.Insert(ctx, "Alice", "a@x.com", "p1")
	require.NoError(t, err)

	_, err = repo.Insert(ctx, "Alice", "A@X.COM", "p1")
	assert.NoError(t, err)
}

func TestAccountRepoPG_Insert_EmptyStrings(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepoPG(db, zaptest.NewLogger(t))

	// NOT NULL does not reject empty strings; the service rejects them first
	acc, err := repo.Insert(context.Background(), "", "", "")
	require.NoError(t, err)
	assert.NotZero(t, acc.ID)
}

func TestAccountRepoPG_Insert_ConcurrentDuplicates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepoPG(db, zaptest.NewLogger(t))

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Insert(context.Background(), "Alice", "race@x.com", "p1")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, account.ErrDuplicateEmail):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
	assert.Equal(t, int64(1), countByEmail(t, db, "race@x.com"))
}

func TestAccountRepoPG_Insert_ClosedDB(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepoPG(db, zaptest.NewLogger(t))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = repo.Insert(context.Background(), "Alice", "a@x.com", "p1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, account.ErrDuplicateEmail)
	assert.Contains(t, err.Error(), "failed to insert account")
}

func TestAccountRepoPG_Now(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepoPG(db, zaptest.NewLogger(t))

	now, err := repo.Now(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, now)
}

func TestIsDuplicateEmail(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "postgres email constraint", err: &pgconn.PgError{Code: "23505", ConstraintName: "utilisateur_email_key"}, expected: true},
		{name: "postgres migrated email constraint", err: &pgconn.PgError{Code: "23505", ConstraintName: "uni_utilisateur_email"}, expected: true},
		{name: "postgres email detail", err: &pgconn.PgError{Code: "23505", Detail: "Key (email)=(a@x.com) already exists."}, expected: true},
		{name: "postgres primary key", err: &pgconn.PgError{Code: "23505", ConstraintName: "utilisateur_pkey", Detail: "Key (id)=(1) already exists."}, expected: false},
		{name: "postgres not null", err: &pgconn.PgError{Code: "23502", ColumnName: "email"}, expected: false},
		{name: "wrapped postgres email", err: fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "23505", ConstraintName: "utilisateur_email_key"}), expected: true},
		{name: "sqlite email", err: errors.New("constraint failed: UNIQUE constraint failed: utilisateur.email (2067)"), expected: true},
		{name: "sqlite primary key", err: errors.New("constraint failed: UNIQUE constraint failed: utilisateur.id (1555)"), expected: false},
		{name: "gorm translated, column unknown", err: gorm.ErrDuplicatedKey, expected: false},
		{name: "other", err: errors.New("connection reset by peer"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isDuplicateEmail(tt.err))
		})
	}
}
