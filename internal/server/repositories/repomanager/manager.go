// Package repomanager wires repository implementations to the configured
// persistence backend: flat JSON files by default, PostgreSQL when a DSN
// is set (for deployments that need a real transactional store).
package repomanager

import (
	"context"

	"github.com/finsight-app/finsight/internal/server/config"
	"github.com/finsight-app/finsight/internal/server/repositories/sessions"
	"github.com/finsight-app/finsight/internal/server/repositories/users"
)

// RepositoryManager vends the repository set for one backend.
type RepositoryManager interface {
	Users() users.Repository
	Sessions() sessions.Repository
	Close() error
}

// Open builds the RepositoryManager selected by the config: Postgres when
// DatabaseDSN is non-empty (migrations are run here), the file backend in
// the configured data directory otherwise.
func Open(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	if cfg.DatabaseDSN != "" {
		return NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	}
	return NewFileRepositoryManager(cfg.DataDir)
}
