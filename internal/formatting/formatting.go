// Package formatting manipulates the structured markup of a note: style
// ranges (bold/italic/underline) and checklist markers. All functions are
// pure; they return a modified copy and never touch the input.
package formatting

import (
	"sort"

	"github.com/lfroes/notas/internal/models"
)

// Style identifies one of the independent range lists of a NoteFormat.
type Style string

const (
	Bold      Style = "bold"
	Italic    Style = "italic"
	Underline Style = "underline"
)

// ranges returns the range list for style. Unknown styles yield nil.
func ranges(f *models.NoteFormat, style Style) []models.FormatRange {
	switch style {
	case Bold:
		return f.Bold
	case Italic:
		return f.Italic
	case Underline:
		return f.Underline
	}
	return nil
}

func setRanges(f *models.NoteFormat, style Style, rs []models.FormatRange) {
	switch style {
	case Bold:
		f.Bold = rs
	case Italic:
		f.Italic = rs
	case Underline:
		f.Underline = rs
	}
}

// Apply adds the half-open range [start, end) to the style's list. An empty
// selection (start == end) is ignored. The new range is appended raw:
// overlaps and duplicates within a style are tolerated, never merged.
func Apply(f models.NoteFormat, style Style, start, end int) models.NoteFormat {
	if start == end {
		return f
	}
	out := f.Clone()
	setRanges(&out, style, append(ranges(&out, style), models.FormatRange{Start: start, End: end}))
	return out
}

// Remove drops ranges of the style that exactly match [start, end).
// Partially overlapping ranges are left alone.
func Remove(f models.NoteFormat, style Style, start, end int) models.NoteFormat {
	out := f.Clone()
	var kept []models.FormatRange
	for _, r := range ranges(&out, style) {
		if r.Start == start && r.End == end {
			continue
		}
		kept = append(kept, r)
	}
	setRanges(&out, style, kept)
	return out
}

// HasFormatAt reports whether any range of the style contains position.
// This is a plain linear scan over the raw list on purpose: downstream
// rendering iterates the same raw ranges to find boundaries.
func HasFormatAt(f *models.NoteFormat, style Style, position int) bool {
	if f == nil {
		return false
	}
	for _, r := range ranges(f, style) {
		if position >= r.Start && position < r.End {
			return true
		}
	}
	return false
}

// AddChecklistItem appends an unchecked checklist marker at position.
func AddChecklistItem(f models.NoteFormat, position int) models.NoteFormat {
	out := f.Clone()
	out.Checklist = append(out.Checklist, models.ChecklistItem{Position: position})
	return out
}

// ToggleChecklistItem flips the checked state of every marker anchored at
// position. Unknown positions are a no-op.
func ToggleChecklistItem(f models.NoteFormat, position int) models.NoteFormat {
	out := f.Clone()
	for i, item := range out.Checklist {
		if item.Position == position {
			out.Checklist[i].Checked = !item.Checked
		}
	}
	return out
}

// Segment is a run of text over which the active style set is constant.
type Segment struct {
	Text   string  `json:"text"`
	Styles []Style `json:"styles,omitempty"`
}

// Segments splits text at every style boundary and tags each run with the
// styles active over it. Positions are rune offsets.
func Segments(text string, f *models.NoteFormat) []Segment {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if f == nil {
		return []Segment{{Text: text}}
	}

	// Collect every range endpoint as a potential boundary.
	bounds := map[int]struct{}{0: {}, len(runes): {}}
	for _, style := range []Style{Bold, Italic, Underline} {
		for _, r := range ranges(f, style) {
			if r.Start > 0 && r.Start < len(runes) {
				bounds[r.Start] = struct{}{}
			}
			if r.End > 0 && r.End < len(runes) {
				bounds[r.End] = struct{}{}
			}
		}
	}
	cuts := make([]int, 0, len(bounds))
	for b := range bounds {
		cuts = append(cuts, b)
	}
	sort.Ints(cuts)

	var out []Segment
	for i := 0; i+1 < len(cuts); i++ {
		start, end := cuts[i], cuts[i+1]
		var styles []Style
		for _, style := range []Style{Bold, Italic, Underline} {
			if HasFormatAt(f, style, start) {
				styles = append(styles, style)
			}
		}
		out = append(out, Segment{Text: string(runes[start:end]), Styles: styles})
	}
	return out
}
