package service

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/and161185/leadgate/internal/errs"
	"github.com/and161185/leadgate/internal/model"
)

const (
	maxSlugLen  = 100
	maxTitleLen = 300
	maxNameLen  = 200
	maxEmailLen = 254
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errs.ErrValidation, fmt.Sprintf(format, args...))
}

func validateSlug(slug string) error {
	if slug == "" || len(slug) > maxSlugLen || !slugRe.MatchString(slug) {
		return invalid("slug must be 1-%d chars of a-z, 0-9 and single dashes", maxSlugLen)
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" || utf8.RuneCountInString(title) > maxTitleLen {
		return invalid("title must be 1-%d chars", maxTitleLen)
	}
	return nil
}

// normalizeContact trims fields, lowercases the email and validates the result.
func normalizeContact(c model.Contact) (model.Contact, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Company = strings.TrimSpace(c.Company)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))

	if c.Email == "" {
		return c, invalid("email is required")
	}
	addr, err := mail.ParseAddress(c.Email)
	if err != nil || addr.Address != c.Email || len(c.Email) > maxEmailLen {
		return c, invalid("email is not valid")
	}
	if utf8.RuneCountInString(c.Name) > maxNameLen {
		return c, invalid("name is longer than %d chars", maxNameLen)
	}
	if utf8.RuneCountInString(c.Company) > maxNameLen {
		return c, invalid("company is longer than %d chars", maxNameLen)
	}
	return c, nil
}
