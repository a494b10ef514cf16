// Package identity derives the stored credential material for an account:
// the password digest, the human-readable display name and the client
// identifier handed to the analysis backend.
package identity

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/finsight-app/finsight/internal/server/models"
)

var titleCaser = cases.Title(language.Und)

// HashPassword returns the hex-encoded SHA-256 digest of the password.
// The digest is deterministic so stored hashes compare by equality.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// DisplayName derives a presentable name from the username by
// title-casing each word.
func DisplayName(username string) string {
	return titleCaser.String(username)
}

// ClientID builds the analysis-backend client identifier:
// a role prefix, the first six uppercased hex characters of the
// username's MD5 digest, and the registration date.
//
// Example: INV_9A0B1C_20260830. Uniqueness rides on the 6-character
// digest space and is not enforced.
func ClientID(username, role string, registeredAt time.Time) string {
	prefix := "IVE"
	if role == models.RoleInvestor {
		prefix = "INV"
	}
	sum := md5.Sum([]byte(username))
	short := strings.ToUpper(hex.EncodeToString(sum[:]))[:6]
	return fmt.Sprintf("%s_%s_%s", prefix, short, registeredAt.Format("20060102"))
}
