// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects issued admin access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User is an admin account. Passwords are stored as encoded argon2id hashes only.
type User struct {
	ID        uuid.UUID // PK
	Username  string    // unique
	PwdHash   string    // "$argon2id$..." encoded hash
	CreatedAt time.Time
}

// Resource is a downloadable asset with a public catalogue entry.
type Resource struct {
	ID             uuid.UUID
	Slug           string // unique, url-safe
	Title          string
	Summary        string
	FileURL        string // where the asset is actually served from
	DownloadsCount int64  // monotonic, only ever incremented in SQL
	Published      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ResourceInput carries admin-editable resource fields.
type ResourceInput struct {
	Slug      string
	Title     string
	Summary   string
	FileURL   string
	Published bool
}

// Contact is the plaintext contact info a prospect submits with a request.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
}

// Lead is a prospect who requested a gated resource.
type Lead struct {
	ID          uuid.UUID
	ResourceID  uuid.UUID // uuid.Nil once the resource is deleted
	ContactEnc  []byte    // sealed Contact (see contactseal)
	Contact     Contact
	Confirmed   bool       // false -> true only
	ConfirmedAt *time.Time // set once, on first confirmation
	CreatedAt   time.Time
}

// DownloadGrant is what a verified download token carries.
type DownloadGrant struct {
	ResourceID uuid.UUID
	LeadID     uuid.UUID
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// DownloadTicket is handed back to a prospect after a successful request.
type DownloadTicket struct {
	LeadID      uuid.UUID
	Token       string
	ExpiresAt   time.Time
	DownloadURL string // landing page that confirms and starts the download
	FileURL     string
}

// ConfirmOutcome reports what the confirmation fan-out managed to do.
// Callers outside diagnostics only care whether Confirm returned an error.
type ConfirmOutcome struct {
	ResourceFound   bool
	LeadConfirmed   bool
	DownloadCounted bool
}

// Post is a blog article.
type Post struct {
	ID          uuid.UUID
	Slug        string
	Title       string
	Excerpt     string
	Body        string // markdown, rendered by the frontend
	Published   bool
	PublishedAt *time.Time // first publish time, kept across unpublish
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PostInput carries admin-editable post fields.
type PostInput struct {
	Slug    string
	Title   string
	Excerpt string
	Body    string
}
