// Package convert maps domain models to the JSON shapes served over HTTP and back.
package convert

import (
	"time"

	model "github.com/and161185/leadgate/internal/model"
)

// --- helpers ---

func ts(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func tsPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return ts(*t)
}

// --- Resources ---

// Resource is the public catalogue entry.
type Resource struct {
	ID             string `json:"id"`
	Slug           string `json:"slug"`
	Title          string `json:"title"`
	Summary        string `json:"summary"`
	DownloadsCount int64  `json:"downloads_count"`
}

// AdminResource adds fields visible only to admins.
type AdminResource struct {
	Resource
	FileURL   string     `json:"file_url"`
	Published bool       `json:"published"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ResourceInput is the admin create/update body. downloads_count is not accepted.
type ResourceInput struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	FileURL   string `json:"file_url"`
	Published bool   `json:"published"`
}

// ToResource converts a domain resource to its public shape.
func ToResource(r model.Resource) Resource {
	return Resource{
		ID:             r.ID.String(),
		Slug:           r.Slug,
		Title:          r.Title,
		Summary:        r.Summary,
		DownloadsCount: r.DownloadsCount,
	}
}

// ToResources converts a slice; never returns nil so it encodes as [].
func ToResources(rs []model.Resource) []Resource {
	out := make([]Resource, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToResource(r))
	}
	return out
}

// ToAdminResource converts a domain resource to its admin shape.
func ToAdminResource(r model.Resource) AdminResource {
	return AdminResource{
		Resource:  ToResource(r),
		FileURL:   r.FileURL,
		Published: r.Published,
		CreatedAt: ts(r.CreatedAt),
		UpdatedAt: ts(r.UpdatedAt),
	}
}

func ToAdminResources(rs []model.Resource) []AdminResource {
	out := make([]AdminResource, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToAdminResource(r))
	}
	return out
}

// FromResourceInput converts the admin body to the domain input.
func FromResourceInput(in ResourceInput) model.ResourceInput {
	return model.ResourceInput{
		Slug:      in.Slug,
		Title:     in.Title,
		Summary:   in.Summary,
		FileURL:   in.FileURL,
		Published: in.Published,
	}
}

// --- Leads ---

// DownloadRequest is the public lead form body.
type DownloadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
}

// FromDownloadRequest converts the form body to a domain contact.
func FromDownloadRequest(in DownloadRequest) model.Contact {
	return model.Contact{Name: in.Name, Email: in.Email, Company: in.Company}
}

// Ticket is returned after a successful download request.
type Ticket struct {
	LeadID      string     `json:"lead_id"`
	Token       string     `json:"token"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	DownloadURL string     `json:"download_url"`
	FileURL     string     `json:"file_url"`
}

// ToTicket converts a domain ticket.
func ToTicket(t model.DownloadTicket) Ticket {
	return Ticket{
		LeadID:      t.LeadID.String(),
		Token:       t.Token,
		ExpiresAt:   ts(t.ExpiresAt),
		DownloadURL: t.DownloadURL,
		FileURL:     t.FileURL,
	}
}

// Lead is the admin view of a captured lead.
type Lead struct {
	ID          string     `json:"id"`
	ResourceID  string     `json:"resource_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Company     string     `json:"company,omitempty"`
	Confirmed   bool       `json:"confirmed"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

func ToLead(l model.Lead) Lead {
	return Lead{
		ID:          l.ID.String(),
		ResourceID:  l.ResourceID.String(),
		Name:        l.Contact.Name,
		Email:       l.Contact.Email,
		Company:     l.Contact.Company,
		Confirmed:   l.Confirmed,
		ConfirmedAt: tsPtr(l.ConfirmedAt),
		CreatedAt:   ts(l.CreatedAt),
	}
}

func ToLeads(ls []model.Lead) []Lead {
	out := make([]Lead, 0, len(ls))
	for _, l := range ls {
		out = append(out, ToLead(l))
	}
	return out
}

// --- Posts ---

// PostSummary is a list entry without the body.
type PostSummary struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Post is a full article.
type Post struct {
	PostSummary
	Body      string     `json:"body"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// PostInput is the admin create/update body.
type PostInput struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Body    string `json:"body"`
}

func ToPostSummary(p model.Post) PostSummary {
	return PostSummary{
		ID:          p.ID.String(),
		Slug:        p.Slug,
		Title:       p.Title,
		Excerpt:     p.Excerpt,
		Published:   p.Published,
		PublishedAt: tsPtr(p.PublishedAt),
	}
}

func ToPostSummaries(ps []model.Post) []PostSummary {
	out := make([]PostSummary, 0, len(ps))
	for _, p := range ps {
		out = append(out, ToPostSummary(p))
	}
	return out
}

func ToPost(p model.Post) Post {
	return Post{
		PostSummary: ToPostSummary(p),
		Body:        p.Body,
		CreatedAt:   ts(p.CreatedAt),
		UpdatedAt:   ts(p.UpdatedAt),
	}
}

func FromPostInput(in PostInput) model.PostInput {
	return model.PostInput{Slug: in.Slug, Title: in.Title, Excerpt: in.Excerpt, Body: in.Body}
}

// --- Auth ---

// LoginRequest is the admin login body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Tokens is the admin login response.
type Tokens struct {
	AccessToken string     `json:"access_token"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func ToTokens(t model.Tokens) Tokens {
	return Tokens{AccessToken: t.AccessToken, ExpiresAt: ts(t.ExpiresAt)}
}
