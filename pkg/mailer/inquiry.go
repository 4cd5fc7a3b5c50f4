// Package mailer relays contact-form inquiries to the mailer service.
//
// An [Inquiry] is validated and normalized, then POSTed to the mailer
// endpoint as application/x-www-form-urlencoded fields name, email, subject
// and message. [Limiter] throttles submissions per client key.
package mailer

import (
	"strings"

	"github.com/reactiveshots/portfolio/pkg/errors"
)

// Field length limits.
const (
	MaxNameLen    = 200
	MaxEmailLen   = 254
	MaxSubjectLen = 300
	MaxMessageLen = 10000
)

// Inquiry is a contact-form submission.
type Inquiry struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Normalized returns a copy with surrounding whitespace trimmed.
func (q Inquiry) Normalized() Inquiry {
	return Inquiry{
		Name:    strings.TrimSpace(q.Name),
		Email:   strings.TrimSpace(q.Email),
		Subject: strings.TrimSpace(q.Subject),
		Message: strings.TrimSpace(q.Message),
	}
}

// Validate checks that every field is present and the email is well formed.
// Whitespace around fields is ignored.
func (q Inquiry) Validate() error {
	q = q.Normalized()
	if err := errors.ValidateText("name", q.Name, MaxNameLen); err != nil {
		return err
	}
	if len(q.Email) > MaxEmailLen {
		return errors.New(errors.ErrCodeInvalidInquiry, "email too long (max %d characters)", MaxEmailLen)
	}
	if err := errors.ValidateEmail(q.Email); err != nil {
		return err
	}
	if err := errors.ValidateText("subject", q.Subject, MaxSubjectLen); err != nil {
		return err
	}
	return errors.ValidateText("message", q.Message, MaxMessageLen)
}
