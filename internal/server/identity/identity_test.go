package identity

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finsight-app/finsight/internal/server/models"
)

func TestHashPassword_NeverEqualsPlaintext(t *testing.T) {
	for _, pw := range []string{"secret1", "a", "correct horse battery staple"} {
		h := HashPassword(pw)
		assert.NotEmpty(t, h)
		assert.NotEqual(t, pw, h)
		assert.Len(t, h, 64)
	}
}

func TestHashPassword_Deterministic(t *testing.T) {
	assert.Equal(t, HashPassword("secret1"), HashPassword("secret1"))
	assert.NotEqual(t, HashPassword("secret1"), HashPassword("secret2"))
}

func TestClientID_Format(t *testing.T) {
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	inv := ClientID("alice", models.RoleInvestor, at)
	assert.Regexp(t, regexp.MustCompile(`^INV_[A-F0-9]{6}_20260830$`), inv)

	ive := ClientID("alice", models.RoleInvestee, at)
	assert.Regexp(t, regexp.MustCompile(`^IVE_[A-F0-9]{6}_20260830$`), ive)

	// Same username and date, different role: only the prefix changes.
	assert.Equal(t, inv[4:], ive[4:])
}

func TestClientID_StableForUsername(t *testing.T) {
	at := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t,
		ClientID("alice", models.RoleInvestor, at),
		ClientID("alice", models.RoleInvestor, at),
	)
	assert.NotEqual(t,
		ClientID("alice", models.RoleInvestor, at),
		ClientID("bob", models.RoleInvestor, at),
	)
}

func TestDisplayName_TitleCasesWords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice", "Alice"},
		{"john doe", "John Doe"},
		{"BOB", "Bob"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, DisplayName(tc.in))
	}
}
