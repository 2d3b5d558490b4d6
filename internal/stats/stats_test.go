package stats

import (
	"testing"
	"time"

	"github.com/lfroes/notas/internal/models"
)

func TestCompute_Totals(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	ms := func(t time.Time) int64 { return t.UnixMilli() }

	notes := []models.Note{
		{ID: "1", Title: "abc", Content: "abcdef", IsFavorite: true, Category: "default", UpdatedAt: ms(now)},
		{ID: "2", Title: "a", Content: "ab", IsLocked: true, Category: "work", UpdatedAt: ms(now.AddDate(0, 0, -1))},
		{ID: "3", Category: "default", UpdatedAt: ms(now.AddDate(0, 0, -20))},
	}
	categories := []models.Category{
		models.DefaultCategory(),
		{ID: "work", Name: "Trabalho", Color: "#FF2D55"},
	}

	s := Compute(notes, categories, now)

	if s.TotalNotes != 3 || s.FavoriteNotes != 1 || s.LockedNotes != 1 || s.EmptyNotes != 1 {
		t.Errorf("totals = %+v", s)
	}
	if s.AvgTitleLength != 1 { // (3+1+0)/3 rounds to 1
		t.Errorf("AvgTitleLength = %d, want 1", s.AvgTitleLength)
	}
	if s.AvgContentLength != 3 { // (6+2+0)/3 rounds to 3
		t.Errorf("AvgContentLength = %d, want 3", s.AvgContentLength)
	}
}

func TestCompute_ByCategorySorted(t *testing.T) {
	now := time.Now()
	notes := []models.Note{
		{ID: "1", Category: "work", UpdatedAt: now.UnixMilli()},
		{ID: "2", Category: "work", UpdatedAt: now.UnixMilli()},
		{ID: "3", Category: "default", UpdatedAt: now.UnixMilli()},
	}
	categories := []models.Category{
		models.DefaultCategory(),
		{ID: "work", Name: "Trabalho", Color: "#FF2D55"},
	}

	s := Compute(notes, categories, now)
	if len(s.ByCategory) != 2 {
		t.Fatalf("ByCategory = %+v", s.ByCategory)
	}
	if s.ByCategory[0].ID != "work" || s.ByCategory[0].Count != 2 || s.ByCategory[0].Percentage != 67 {
		t.Errorf("busiest category first, got %+v", s.ByCategory[0])
	}
	if s.ByCategory[1].ID != "default" || s.ByCategory[1].Percentage != 33 {
		t.Errorf("ByCategory[1] = %+v", s.ByCategory[1])
	}
}

func TestCompute_Activity(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	ms := func(t time.Time) int64 { return t.UnixMilli() }

	notes := []models.Note{
		{ID: "today", UpdatedAt: ms(now.Add(-2 * time.Hour))},
		{ID: "yesterday", UpdatedAt: ms(now.AddDate(0, 0, -1))},
		{ID: "lastweek", UpdatedAt: ms(now.AddDate(0, 0, -6))},
		{ID: "lastmonth", UpdatedAt: ms(now.AddDate(0, 0, -20))},
		{ID: "ancient", UpdatedAt: ms(now.AddDate(0, -2, 0))},
	}

	s := Compute(notes, nil, now)
	if s.Activity.Today != 1 {
		t.Errorf("Today = %d, want 1", s.Activity.Today)
	}
	if s.Activity.Yesterday != 1 {
		t.Errorf("Yesterday = %d, want 1", s.Activity.Yesterday)
	}
	if s.Activity.LastWeek != 3 { // today + yesterday + lastweek
		t.Errorf("LastWeek = %d, want 3", s.Activity.LastWeek)
	}
	if s.Activity.LastMonth != 4 {
		t.Errorf("LastMonth = %d, want 4", s.Activity.LastMonth)
	}
}

func TestCompute_LastMonthIsCalendar(t *testing.T) {
	// One calendar month before Mar 31 normalizes to Mar 3 (Feb 2026 has 28
	// days), so the window is narrower than a flat 30 days here.
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	notes := []models.Note{
		{ID: "in", UpdatedAt: time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC).UnixMilli()},
		{ID: "out", UpdatedAt: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC).UnixMilli()},
	}

	s := Compute(notes, nil, now)
	if s.Activity.LastMonth != 1 {
		t.Errorf("LastMonth = %d, want 1 (calendar month, not 30 days)", s.Activity.LastMonth)
	}
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil, nil, time.Now())
	if s.TotalNotes != 0 || s.AvgContentLength != 0 || len(s.ByCategory) != 0 {
		t.Errorf("empty input should yield zero stats, got %+v", s)
	}
}
