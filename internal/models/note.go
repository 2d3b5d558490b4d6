// Package models defines the domain types for Notas.
package models

import "time"

// Millis is an epoch-milliseconds timestamp, the unit the persisted
// snapshot and export file use for createdAt/updatedAt.
type Millis = int64

// NowMillis returns the current time as epoch milliseconds.
func NowMillis() Millis {
	return time.Now().UnixMilli()
}

// DefaultCategoryID is the well-known category every note falls back to.
// It is created at store initialization and can never be deleted.
const DefaultCategoryID = "default"

// Note is a single user-authored text record.
type Note struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	CreatedAt    Millis      `json:"createdAt"`
	UpdatedAt    Millis      `json:"updatedAt"`
	IsFavorite   bool        `json:"isFavorite"`
	IsLocked     bool        `json:"isLocked"`
	LockPassword string      `json:"lockPassword,omitempty"`
	Category     string      `json:"category,omitempty"`
	BgColor      string      `json:"bgColor,omitempty"`
	Formatting   *NoteFormat `json:"formatting,omitempty"`
	Attachments  []string    `json:"attachments,omitempty"`
}

// Category is a named, colored grouping tag for notes.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// State is the full persisted unit: everything the store owns.
type State struct {
	Notes      []Note     `json:"notes"`
	Categories []Category `json:"categories"`
}

// DefaultCategory returns the built-in category seeded on first run.
func DefaultCategory() Category {
	return Category{ID: DefaultCategoryID, Name: "Notas", Color: "#3478F6"}
}

// Clone returns a deep copy of the note, so that snapshots handed to
// collaborators never alias store-owned slices.
func (n Note) Clone() Note {
	out := n
	if n.Formatting != nil {
		f := n.Formatting.Clone()
		out.Formatting = &f
	}
	if n.Attachments != nil {
		out.Attachments = append([]string(nil), n.Attachments...)
	}
	return out
}
