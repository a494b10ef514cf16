package users

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/finsight-app/finsight/internal/common"
	"github.com/finsight-app/finsight/internal/server/models"
)

// FileRepository keeps the whole user collection in a single JSON file,
// keyed by username. Every read loads the file in full and every mutation
// rewrites it in full via a temp file and an atomic rename. There is no
// coordination between writers; the deployment is assumed single-process.
type FileRepository struct {
	path string
}

func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{path: filepath.Join(dir, "users.json")}
}

func (r *FileRepository) load() (map[string]*models.User, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*models.User{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	users := map[string]*models.User{}
	if err := json.Unmarshal(data, &users); err != nil {
		// A present-but-undecodable file is reported, not treated as an
		// empty store: otherwise corruption silently locks out every account.
		return nil, fmt.Errorf("decode %s: %w", r.path, common.ErrorStoreCorrupt)
	}
	for name, u := range users {
		u.Username = name
	}
	return users, nil
}

func (r *FileRepository) save(users map[string]*models.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func (r *FileRepository) Create(ctx context.Context, user *models.User) error {
	users, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := users[user.Username]; ok {
		return common.ErrorAlreadyExists
	}
	users[user.Username] = user
	return r.save(users)
}

func (r *FileRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	user, ok := users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return user, nil
}

func (r *FileRepository) Update(ctx context.Context, user *models.User) error {
	users, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := users[user.Username]; !ok {
		return common.ErrorNotFound
	}
	users[user.Username] = user
	return r.save(users)
}
