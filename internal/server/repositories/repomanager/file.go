package repomanager

import (
	"github.com/finsight-app/finsight/internal/filex"
	"github.com/finsight-app/finsight/internal/server/repositories/sessions"
	"github.com/finsight-app/finsight/internal/server/repositories/users"
)

// FileRepositoryManager vends JSON-file-backed repositories rooted at a
// single data directory.
type FileRepositoryManager struct {
	users    *users.FileRepository
	sessions *sessions.FileRepository
}

func NewFileRepositoryManager(dataDir string) (*FileRepositoryManager, error) {
	dir, err := filex.EnsureDir(dataDir)
	if err != nil {
		return nil, err
	}
	return &FileRepositoryManager{
		users:    users.NewFileRepository(dir),
		sessions: sessions.NewFileRepository(dir),
	}, nil
}

func (m *FileRepositoryManager) Users() users.Repository       { return m.users }
func (m *FileRepositoryManager) Sessions() sessions.Repository { return m.sessions }

func (m *FileRepositoryManager) Close() error { return nil }
