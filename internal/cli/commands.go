package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/finsight-app/finsight/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, password and role and creates the
// account through the same service the HTTP API uses, so the exact
// validation rules apply.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	role, err := getSimpleText(a.reader, "Enter role (investor/investee)", a.out)
	if err != nil {
		return err
	}

	reg, err := a.auth.Register(ctx, username, string(password), role)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, reg.Message)
	return nil
}

// Info prints the stored account record for a username.
func (a *App) Info(ctx context.Context, username string) error {
	user, err := a.auth.GetUserInfo(ctx, username)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Username:   %s\n", user.Username)
	fmt.Fprintf(a.out, "Full name:  %s\n", user.FullName)
	fmt.Fprintf(a.out, "Role:       %s\n", user.Role)
	fmt.Fprintf(a.out, "Client ID:  %s\n", user.ClientID)
	fmt.Fprintf(a.out, "Created:    %s\n", user.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(a.out, "Last login: %s\n", user.LastLogin.Format(time.RFC3339))
	return nil
}

// PurgeSessions removes every session whose expiry is in the past. The
// server itself only evicts sessions lazily when a stale token is
// presented, so long-lived deployments run this from cron.
func (a *App) PurgeSessions(ctx context.Context) error {
	n, err := a.repoManager.Sessions().DeleteExpired(ctx, time.Now())
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Purged %d expired session(s)\n", n)
	return nil
}
