package handlers

import (
	"strings"
	"unicode/utf8"

	"shopadmin/internal/slug"
)

// Validation limits for catalog fields.
const (
	maxNameLen        = 200
	maxSlugLen        = 200
	maxDescriptionLen = 50_000
	maxShortDescLen   = 1_000
	maxAltTextLen     = 500
	maxMessageLen     = 10_000
	maxContactNameLen = 200
)

// validateCategory checks category inputs and returns the first error found.
func validateCategory(name, slugValue, description string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	if msg := validateSlug(slugValue); msg != "" {
		return msg
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 50,000 characters)."
	}
	return ""
}

// validateProduct checks product inputs and returns the first error found.
func validateProduct(name, slugValue, shortDescription, description string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	if msg := validateSlug(slugValue); msg != "" {
		return msg
	}
	if utf8.RuneCountInString(shortDescription) > maxShortDescLen {
		return "Short description is too long (max 1,000 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 50,000 characters)."
	}
	return ""
}

// validateSlug checks a URL slug: lowercase alphanumerics separated by
// single hyphens, no leading or trailing hyphen.
func validateSlug(s string) string {
	if s == "" {
		return "Slug is required."
	}
	if utf8.RuneCountInString(s) > maxSlugLen {
		return "Slug is too long (max 200 characters)."
	}
	if !slug.IsValid(s) {
		return "Slug may only contain lowercase letters, digits and single hyphens."
	}
	return ""
}

// validateContact checks contact form inputs and returns the first error found.
func validateContact(name, message string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxContactNameLen {
		return "Name is too long (max 200 characters)."
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "Message is required."
	}
	if utf8.RuneCountInString(message) > maxMessageLen {
		return "Message is too long (max 10,000 characters)."
	}
	return ""
}
