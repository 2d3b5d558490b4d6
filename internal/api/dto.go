package api

import (
	"encoding/json"

	"github.com/lfroes/notas/internal/formatting"
	"github.com/lfroes/notas/internal/models"
)

// UpdateNoteRequest is the request body for replacing title and content.
type UpdateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PatchNoteRequest is the request body for a single-field mutation.
// Value is decoded per field: category/bgColor take a string, formatting a
// NoteFormat object, attachments a string list.
type PatchNoteRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// FormatRequest mutates a note's structured markup. Action is one of
// "apply", "remove", "checklist-add", "checklist-toggle". Style and the
// [Start, End) selection drive the style actions; Position anchors the
// checklist actions.
type FormatRequest struct {
	Action   string `json:"action"`
	Style    string `json:"style,omitempty"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Position int    `json:"position"`
}

// SegmentsResponse wraps a note's content split at style boundaries.
type SegmentsResponse struct {
	Segments []formatting.Segment `json:"segments"`
}

// LockRequest carries the plaintext lock password. This is a convenience
// gate, not a security feature; the stored password round-trips so the
// client can compare before unlocking.
type LockRequest struct {
	Password string `json:"password"`
}

// CategoryRequest is the request body for creating or updating a category.
type CategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// IDResponse wraps a newly created id.
type IDResponse struct {
	ID string `json:"id"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes"`
	Total int           `json:"total"`
}

// CategoryListResponse wraps the category listing.
type CategoryListResponse struct {
	Categories []models.Category `json:"categories"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []models.Note `json:"results"`
	Total   int           `json:"total"`
}

// OKResponse is the body of boolean outcomes (import).
type OKResponse struct {
	Success bool `json:"success"`
}
