package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/finsight-app/finsight/internal/common"
	"github.com/finsight-app/finsight/internal/server/models"
)

// FileRepository keeps the session collection in a single JSON file keyed
// by token, loaded in full on read and rewritten in full on mutation via
// temp file + rename. Same single-writer assumption as the user store.
type FileRepository struct {
	path string
}

func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{path: filepath.Join(dir, "sessions.json")}
}

func (r *FileRepository) load() (map[string]*models.Session, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*models.Session{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}

	sessions := map[string]*models.Session{}
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, common.ErrorStoreCorrupt)
	}
	for id, s := range sessions {
		s.ID = id
	}
	return sessions, nil
}

func (r *FileRepository) save(sessions map[string]*models.Session) error {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
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

func (r *FileRepository) Create(ctx context.Context, session *models.Session) error {
	sessions, err := r.load()
	if err != nil {
		return err
	}
	sessions[session.ID] = session
	return r.save(sessions)
}

func (r *FileRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	sessions, err := r.load()
	if err != nil {
		return nil, err
	}
	session, ok := sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return session, nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	sessions, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := sessions[id]; !ok {
		return nil
	}
	delete(sessions, id)
	return r.save(sessions)
}

func (r *FileRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	sessions, err := r.load()
	if err != nil {
		return 0, err
	}
	var removed int64
	for id, s := range sessions {
		if now.After(s.ExpiresAt) {
			delete(sessions, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, r.save(sessions)
}
