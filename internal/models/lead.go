package models

import (
	"strings"
	"time"
)

// Lead is a contact captured through the registration form.
type Lead struct {
	ID           int64     `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	Interest     string    `db:"interest" json:"interest"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// LeadInput carries the mutable fields of a lead.
type LeadInput struct {
	FullName string `json:"full_name" yaml:"full_name"`
	Email    string `json:"email" yaml:"email"`
	Phone    string `json:"phone" yaml:"phone"`
	Interest string `json:"interest" yaml:"interest"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (in LeadInput) Trimmed() LeadInput {
	return LeadInput{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Interest: strings.TrimSpace(in.Interest),
	}
}

// Input extracts the mutable part of the lead, e.g. to prefill an edit form.
func (l Lead) Input() LeadInput {
	return LeadInput{
		FullName: l.FullName,
		Email:    l.Email,
		Phone:    l.Phone,
		Interest: l.Interest,
	}
}

// HealthStatus is the result of a database readiness probe.
type HealthStatus struct {
	Reachable bool   `json:"reachable"`
	Version   string `json:"version,omitempty"`
	Engine    string `json:"engine"`
}
