package models

import "time"

// Note is owned by one tenant and authored by one of its users.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	TenantID  string    `json:"tenantId"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Author is populated by list queries
	Author *NoteAuthor `json:"author,omitempty"`
}

// NoteAuthor is the slice of the authoring user exposed alongside a note.
type NoteAuthor struct {
	Email string `json:"email"`
}

// NoteList is the list response: every note visible to the tenant plus the count.
type NoteList struct {
	Notes     []Note `json:"notes"`
	NoteCount int    `json:"noteCount"`
}
