package handler

import (
	"net/mail"
	"strings"

	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

const maxNameLength = 255

// validateName checks a RAG name. Returns nil when valid.
func validateName(name string) *apierr.Error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apierr.NameRequired()
	}
	if len(name) > maxNameLength {
		return apierr.NameTooLong()
	}
	return nil
}

// validateEmail checks an email address. Returns nil when valid.
func validateEmail(email string) *apierr.Error {
	if _, err := mail.ParseAddress(email); err != nil {
		return apierr.EmailRequired()
	}
	return nil
}
