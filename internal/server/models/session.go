package models

import "time"

// Session is a live login session, keyed by a random opaque token. It
// references, but does not own, the user it was issued for. A session is
// removed on logout or lazily the first time validation sees it expired.
type Session struct {
	ID        string    `json:"-"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
