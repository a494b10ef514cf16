package users

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-app/finsight/internal/common"
	"github.com/finsight-app/finsight/internal/server/models"
)

func sampleUser(username string) *models.User {
	return &models.User{
		Username:     username,
		PasswordHash: "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8",
		Role:         models.RoleInvestor,
		FullName:     "Alice",
		ClientID:     "INV_AB12CD_20260830",
		CreatedAt:    time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}
}

func TestFileRepository_CreateAndGet(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileRepository(dir)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleUser("alice")))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "Alice", got.FullName)
	assert.Equal(t, models.RoleInvestor, got.Role)
}

func TestFileRepository_CreateDuplicate(t *testing.T) {
	repo := NewFileRepository(t.TempDir())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleUser("alice")))
	err := repo.Create(ctx, sampleUser("alice"))
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestFileRepository_GetMissing(t *testing.T) {
	repo := NewFileRepository(t.TempDir())
	_, err := repo.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFileRepository_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	require.NoError(t, NewFileRepository(dir).Create(ctx, sampleUser("alice")))

	// A fresh repository over the same directory sees the record.
	got, err := NewFileRepository(dir).GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "INV_AB12CD_20260830", got.ClientID)
}

func TestFileRepository_Update(t *testing.T) {
	repo := NewFileRepository(t.TempDir())
	ctx := context.Background()

	user := sampleUser("alice")
	require.NoError(t, repo.Create(ctx, user))

	user.LastLogin = time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.LastLogin, got.LastLogin)

	err = repo.Update(ctx, sampleUser("ghost"))
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFileRepository_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte("{not json"), 0o600))

	repo := NewFileRepository(dir)
	_, err := repo.GetByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, common.ErrorStoreCorrupt)

	err = repo.Create(context.Background(), sampleUser("alice"))
	assert.ErrorIs(t, err, common.ErrorStoreCorrupt)
}

func TestFileRepository_HashNotExposedAsPlaintext(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewFileRepository(dir).Create(context.Background(), sampleUser("alice")))

	data, err := os.ReadFile(filepath.Join(dir, "users.json"))
	require.NoError(t, err)

	// The on-disk document is keyed by username and keeps the digest
	// under "password", mirroring what the dashboard backend expects.
	assert.Contains(t, string(data), `"alice"`)
	assert.Contains(t, string(data), `"password": "5e884898`)
}
