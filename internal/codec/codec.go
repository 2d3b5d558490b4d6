// Package codec serializes the full store state to and from the JSON blob
// used by both the persisted snapshot and the export/import feature.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lfroes/notas/internal/apperr"
	"github.com/lfroes/notas/internal/models"
)

// Encode serializes state as a self-describing JSON document with top-level
// "notes" and "categories" keys. Nil slices are written as empty arrays so
// the output always carries both collections.
func Encode(state models.State) ([]byte, error) {
	if state.Notes == nil {
		state.Notes = []models.Note{}
	}
	if state.Categories == nil {
		state.Categories = []models.Category{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(state); err != nil {
		return nil, fmt.Errorf("codec: encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// envelope mirrors the export shape loosely: only the presence and kind of
// the top-level keys is checked here, individual records are decoded as-is.
type envelope struct {
	Notes      json.RawMessage `json:"notes"`
	Categories json.RawMessage `json:"categories"`
}

// Decode parses a state blob. The only structural requirement is that a
// "notes" key exists and holds a JSON array; anything else fails with
// apperr.ErrMalformedImport and the caller must leave its state untouched.
//
// hasCategories reports whether the payload carried a categories list at
// all — importers keep their existing categories when it is absent.
// Malformed individual records are tolerated; missing optional note fields
// decode to their zero values, which keeps snapshots written by older
// schema versions readable.
func Decode(data []byte) (state models.State, hasCategories bool, err error) {
	var env envelope
	if jsonErr := json.Unmarshal(data, &env); jsonErr != nil {
		return models.State{}, false, fmt.Errorf("codec: %w: %v", apperr.ErrMalformedImport, jsonErr)
	}
	if !isArray(env.Notes) {
		return models.State{}, false, fmt.Errorf("codec: %w: notes key missing or not a list", apperr.ErrMalformedImport)
	}
	if err := json.Unmarshal(env.Notes, &state.Notes); err != nil {
		return models.State{}, false, fmt.Errorf("codec: %w: %v", apperr.ErrMalformedImport, err)
	}
	if isArray(env.Categories) {
		if err := json.Unmarshal(env.Categories, &state.Categories); err != nil {
			return models.State{}, false, fmt.Errorf("codec: %w: %v", apperr.ErrMalformedImport, err)
		}
		hasCategories = true
	}
	return state, hasCategories, nil
}

// isArray reports whether raw is a present JSON array.
func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

// ExportFilename returns the date-stamped download name for an export.
func ExportFilename(now time.Time) string {
	return "notas-export-" + now.Format("2006-01-02") + ".json"
}
