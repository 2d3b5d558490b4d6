// Package search derives a filtered, ordered view of notes from a free-text
// query and a structured option set. Search is a pure function over its
// inputs; callers re-invoke it whenever the query, the options, or the note
// collection changes.
package search

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/lfroes/notas/internal/models"
)

// Options is the structured filter set. Each field is independently
// toggleable; the zero value matches nothing textual, so most callers start
// from DefaultOptions.
type Options struct {
	InTitle        bool   `json:"inTitle"`
	InContent      bool   `json:"inContent"`
	CaseSensitive  bool   `json:"caseSensitive"`
	MatchWholeWord bool   `json:"matchWholeWord"`
	OnlyFavorites  bool   `json:"onlyFavorites"`
	CategoryID     string `json:"categoryId,omitempty"`

	// DateFrom/DateTo gate on updatedAt at day granularity: DateFrom is
	// truncated to the start of its day, DateTo extended to its end.
	DateFrom *time.Time `json:"dateFrom,omitempty"`
	DateTo   *time.Time `json:"dateTo,omitempty"`
}

// DefaultOptions matches both fields, case-insensitively, no gates.
func DefaultOptions() Options {
	return Options{InTitle: true, InContent: true}
}

// Search returns the notes that pass every gate and, when query is
// non-empty, match it textually. Input order is preserved. The gates
// (favorites, category, date range) apply even for an empty query.
func Search(notes []models.Note, query string, opts Options) []models.Note {
	if !opts.CaseSensitive {
		query = strings.ToLower(query)
	}

	var out []models.Note
	for _, note := range notes {
		if opts.OnlyFavorites && !note.IsFavorite {
			continue
		}
		if opts.CategoryID != "" && note.Category != opts.CategoryID {
			continue
		}
		updated := time.UnixMilli(note.UpdatedAt)
		if opts.DateFrom != nil && updated.Before(startOfDay(*opts.DateFrom)) {
			continue
		}
		if opts.DateTo != nil && updated.After(endOfDay(*opts.DateTo)) {
			continue
		}
		if query == "" {
			out = append(out, note)
			continue
		}
		if opts.InTitle && fieldMatches(note.Title, query, opts) {
			out = append(out, note)
			continue
		}
		if opts.InContent && fieldMatches(note.Content, query, opts) {
			out = append(out, note)
		}
	}
	return out
}

// fieldMatches reports whether field matches the (already case-folded)
// query: substring containment, or exact whitespace-delimited word equality
// when MatchWholeWord is set.
func fieldMatches(field, query string, opts Options) bool {
	if !opts.CaseSensitive {
		field = strings.ToLower(field)
	}
	if opts.MatchWholeWord {
		for _, word := range strings.Fields(field) {
			if word == query {
				return true
			}
		}
		return false
	}
	return strings.Contains(field, query)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// Span is one run of a highlighted text: either a literal stretch or a
// matched occurrence of the query.
type Span struct {
	Text  string `json:"text"`
	Match bool   `json:"match,omitempty"`
}

// foldMap lowers text rune by rune and records, for each folded rune start
// plus a final sentinel, the byte offset of the original rune that produced
// it. Simple case mapping can change a rune's byte width (Ⱥ grows, İ
// shrinks), so indexes into the folded text cannot be reused on the
// original directly.
func foldMap(text string) (folded string, foldedStarts, origStarts []int) {
	var b strings.Builder
	b.Grow(len(text))
	for i, r := range text {
		foldedStarts = append(foldedStarts, b.Len())
		origStarts = append(origStarts, i)
		b.WriteRune(unicode.ToLower(r))
	}
	foldedStarts = append(foldedStarts, b.Len())
	origStarts = append(origStarts, len(text))
	return b.String(), foldedStarts, origStarts
}

// Highlight wraps every case-appropriate occurrence of query in text,
// scanning left to right from the first hit. It always highlights by
// substring, regardless of whole-word matching in the filter. Matched
// spans cover whole runes of the original text even when case folding
// changes byte widths.
func Highlight(text, query string, caseSensitive bool) []Span {
	if text == "" || query == "" {
		return []Span{{Text: text}}
	}

	cmpText, cmpQuery := text, query
	toOrig := func(i int) int { return i }
	if !caseSensitive {
		folded, foldedStarts, origStarts := foldMap(text)
		cmpText = folded
		cmpQuery = strings.ToLower(query)
		toOrig = func(i int) int {
			return origStarts[sort.SearchInts(foldedStarts, i)]
		}
	}

	var out []Span
	prev, from := 0, 0
	for from+len(cmpQuery) <= len(cmpText) {
		rel := strings.Index(cmpText[from:], cmpQuery)
		if rel < 0 {
			break
		}
		idx := from + rel
		from = idx + len(cmpQuery)

		start, end := toOrig(idx), toOrig(from)
		if end <= start {
			continue
		}
		if start > prev {
			out = append(out, Span{Text: text[prev:start]})
		}
		out = append(out, Span{Text: text[start:end], Match: true})
		prev = end
	}
	if prev < len(text) || len(out) == 0 {
		out = append(out, Span{Text: text[prev:]})
	}
	return out
}
