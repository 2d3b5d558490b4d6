package models

// FormatRange marks a half-open [Start, End) character span carrying a
// text style. Ranges of the same style may overlap or repeat; they are
// stored raw and never merged, because renderers walk the raw list to
// find style boundaries.
type FormatRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ChecklistItem marks a checklist toggle anchored at a character position.
type ChecklistItem struct {
	Position int  `json:"position"`
	Checked  bool `json:"checked"`
}

// NoteFormat holds the structured markup of a note: one independent range
// list per style plus the checklist markers.
type NoteFormat struct {
	Bold      []FormatRange   `json:"bold"`
	Italic    []FormatRange   `json:"italic"`
	Underline []FormatRange   `json:"underline"`
	Checklist []ChecklistItem `json:"checklist"`
}

// Clone returns a deep copy of the format.
func (f NoteFormat) Clone() NoteFormat {
	return NoteFormat{
		Bold:      append([]FormatRange(nil), f.Bold...),
		Italic:    append([]FormatRange(nil), f.Italic...),
		Underline: append([]FormatRange(nil), f.Underline...),
		Checklist: append([]ChecklistItem(nil), f.Checklist...),
	}
}
