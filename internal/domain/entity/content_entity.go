package entity

import (
	"time"
)

// ContentEntry is one saved draft in a user's content history, keyed by
// the verified email the session token asserted. The draft itself is
// produced by the external generation API; this service only stores it.
type ContentEntry struct {
	ID               string
	UserEmail        string
	Title            string
	ContentType      string
	Tone             string
	Audience         string
	Purpose          string
	WordLimit        int
	GeneratedContent string
	CreatedAt        time.Time
}
