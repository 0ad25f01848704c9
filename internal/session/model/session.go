// Package model defines the session record shared by the session layers.
package model

import "time"

// DefaultLanguage is used when a session is created without one.
const DefaultLanguage = "python"

// Session is one saved editor state.
type Session struct {
	ID        string         `json:"id"`
	Code      string         `json:"code"`
	Language  string         `json:"language"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Metadata  map[string]any `json:"metadata"`
}
