// Package stats computes aggregate figures over the note collection for
// the statistics panel.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/lfroes/notas/internal/models"
)

// CategoryCount is the per-category slice of the totals.
type CategoryCount struct {
	models.Category
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// Activity counts notes by how recently they were updated.
type Activity struct {
	Today     int `json:"today"`
	Yesterday int `json:"yesterday"`
	LastWeek  int `json:"lastWeek"`
	LastMonth int `json:"lastMonth"`
}

// Stats is the full aggregate view.
type Stats struct {
	TotalNotes       int             `json:"totalNotes"`
	FavoriteNotes    int             `json:"favoriteNotes"`
	LockedNotes      int             `json:"lockedNotes"`
	EmptyNotes       int             `json:"emptyNotes"`
	AvgTitleLength   int             `json:"avgTitleLength"`
	AvgContentLength int             `json:"avgContentLength"`
	ByCategory       []CategoryCount `json:"byCategory"`
	Activity         Activity        `json:"activity"`
}

// Compute derives Stats from the current collections. Day comparisons use
// now's location; "last week" is a rolling 7-day window and "last month"
// steps back one calendar month, both over updatedAt.
func Compute(notes []models.Note, categories []models.Category, now time.Time) Stats {
	s := Stats{TotalNotes: len(notes)}

	var titleLen, contentLen int
	for _, n := range notes {
		if n.IsFavorite {
			s.FavoriteNotes++
		}
		if n.IsLocked {
			s.LockedNotes++
		}
		if n.Title == "" && n.Content == "" {
			s.EmptyNotes++
		}
		titleLen += len([]rune(n.Title))
		contentLen += len([]rune(n.Content))
	}
	if len(notes) > 0 {
		s.AvgTitleLength = int(math.Round(float64(titleLen) / float64(len(notes))))
		s.AvgContentLength = int(math.Round(float64(contentLen) / float64(len(notes))))
	}

	counts := make(map[string]int, len(categories))
	for _, n := range notes {
		counts[n.Category]++
	}
	for _, c := range categories {
		count := counts[c.ID]
		pct := 0
		if s.TotalNotes > 0 {
			pct = int(math.Round(float64(count) / float64(s.TotalNotes) * 100))
		}
		s.ByCategory = append(s.ByCategory, CategoryCount{Category: c, Count: count, Percentage: pct})
	}
	// Busiest categories first.
	sort.SliceStable(s.ByCategory, func(i, j int) bool {
		return s.ByCategory[i].Count > s.ByCategory[j].Count
	})

	yesterday := now.AddDate(0, 0, -1)
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, -1, 0)
	for _, n := range notes {
		updated := time.UnixMilli(n.UpdatedAt).In(now.Location())
		if sameDay(updated, now) {
			s.Activity.Today++
		}
		if sameDay(updated, yesterday) {
			s.Activity.Yesterday++
		}
		if !updated.Before(weekAgo) {
			s.Activity.LastWeek++
		}
		if !updated.Before(monthAgo) {
			s.Activity.LastMonth++
		}
	}
	return s
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
