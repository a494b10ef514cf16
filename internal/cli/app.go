// Package cli implements the operator command line tool for the
// FinSight identity store. It talks to the same backend the server
// uses, so accounts created here are immediately visible to the
// dashboard.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/finsight-app/finsight/internal/logging"
	"github.com/finsight-app/finsight/internal/server/config"
	"github.com/finsight-app/finsight/internal/server/repositories/repomanager"
	"github.com/finsight-app/finsight/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repoManager repomanager.RepositoryManager
	auth        *services.AuthService
	reader      *bufio.Reader
	out         io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewDefault(cfg.LogLevel)

	rm, err := repomanager.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	return &App{
		config:      cfg,
		logger:      logger,
		repoManager: rm,
		auth:        services.NewAuthService(rm, cfg, logger),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) Close() error {
	return a.repoManager.Close()
}

// Run dispatches a single subcommand. Unlike the server, the tool does
// its work and exits; there is no interactive loop.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return nil
	}

	switch args[0] {
	case "register":
		return a.Register(ctx)
	case "info":
		if len(args) < 2 {
			return fmt.Errorf("usage: info <username>")
		}
		return a.Info(ctx, args[1])
	case "purge-sessions":
		return a.PurgeSessions(ctx)
	case "help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "FinSight operator tool")
	fmt.Fprintln(a.out, "Commands:")
	fmt.Fprintln(a.out, "  register          create an account interactively")
	fmt.Fprintln(a.out, "  info <username>   show a stored account")
	fmt.Fprintln(a.out, "  purge-sessions    delete all expired sessions")
}
