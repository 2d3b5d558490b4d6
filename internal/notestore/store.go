// Package notestore owns the canonical note and category collections.
// Every mutation goes through the Store, which persists the full state
// after each one; collaborators only ever see snapshot copies.
package notestore

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/lfroes/notas/internal/checksum"
	"github.com/lfroes/notas/internal/codec"
	"github.com/lfroes/notas/internal/models"
	"github.com/lfroes/notas/internal/storage"
)

// DuplicateSuffix is appended to the title of a duplicated note.
const DuplicateSuffix = " (Cópia)"

// Field names accepted by UpdateNoteField.
type Field string

const (
	FieldCategory    Field = "category"
	FieldBgColor     Field = "bgColor"
	FieldFormatting  Field = "formatting"
	FieldAttachments Field = "attachments"
)

// ChangeKind classifies a store change for event consumers.
type ChangeKind string

const (
	ChangeCreated  ChangeKind = "created"
	ChangeUpdated  ChangeKind = "updated"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeCategory ChangeKind = "category"
	ChangeImported ChangeKind = "imported"
	ChangeReloaded ChangeKind = "reloaded"
)

// ChangeFunc is called after every committed mutation. id is the affected
// note id when the change concerns a single note, empty otherwise.
type ChangeFunc func(kind ChangeKind, id string)

// Store is the single source of truth for notes and categories.
type Store struct {
	mu         sync.Mutex
	notes      []models.Note
	categories []models.Category

	provider storage.Provider
	logger   *slog.Logger
	now      func() models.Millis
	newID    func() string
	onChange ChangeFunc

	rev atomic.Uint64

	// persistedSum is the checksum of the last snapshot this store wrote,
	// so the watcher can tell its own writes from external ones.
	persistedSum string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the timestamp source (tests).
func WithClock(now func() models.Millis) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides id generation (tests).
func WithIDFunc(newID func() string) StoreOption {
	return func(s *Store) { s.newID = newID }
}

// WithOnChange registers the change callback.
func WithOnChange(fn ChangeFunc) StoreOption {
	return func(s *Store) { s.onChange = fn }
}

// New hydrates a store from the provider's snapshot. A missing snapshot
// starts an empty store seeded with the default category; a corrupt one is
// an error rather than silent data loss.
func New(provider storage.Provider, opts ...StoreOption) (*Store, error) {
	s := &Store{
		provider: provider,
		logger:   slog.Default(),
		now:      models.NowMillis,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	blob, err := provider.Load()
	if err != nil {
		return nil, fmt.Errorf("notestore: load snapshot: %w", err)
	}
	if len(blob) > 0 {
		state, _, err := codec.Decode(blob)
		if err != nil {
			return nil, fmt.Errorf("notestore: hydrate: %w", err)
		}
		s.notes = state.Notes
		s.categories = state.Categories
		s.persistedSum = checksum.Sum(blob)
	}
	s.ensureDefaultCategory()
	return s, nil
}

// ensureDefaultCategory inserts the undeletable default category at the
// front if it is missing. Callers must hold mu or have exclusive access.
func (s *Store) ensureDefaultCategory() {
	for _, c := range s.categories {
		if c.ID == models.DefaultCategoryID {
			return
		}
	}
	s.categories = append([]models.Category{models.DefaultCategory()}, s.categories...)
}

// persistLocked writes the full state through the provider. Persistence
// failures are logged, never surfaced: the in-memory state stays canonical.
func (s *Store) persistLocked() {
	blob, err := codec.Encode(models.State{Notes: s.notes, Categories: s.categories})
	if err != nil {
		s.logger.Warn("persist: encode failed", slog.String("error", err.Error()))
		return
	}
	if err := s.provider.Save(blob); err != nil {
		s.logger.Warn("persist: save failed", slog.String("error", err.Error()))
		return
	}
	s.persistedSum = checksum.Sum(blob)
}

// commitLocked persists, bumps the revision, and releases the lock before
// invoking the change callback.
func (s *Store) commitLocked(kind ChangeKind, id string) {
	s.persistLocked()
	s.rev.Add(1)
	s.mu.Unlock()
	if s.onChange != nil {
		s.onChange(kind, id)
	}
}

// findLocked returns the index of the note with the given id, or -1.
func (s *Store) findLocked(id string) int {
	for i := range s.notes {
		if s.notes[i].ID == id {
			return i
		}
	}
	return -1
}

// AddNote creates an empty note in the default category and prepends it to
// the collection (most-recent-first ordering). Returns the new id.
func (s *Store) AddNote() string {
	s.mu.Lock()
	now := s.now()
	note := models.Note{
		ID:        s.newID(),
		CreatedAt: now,
		UpdatedAt: now,
		Category:  models.DefaultCategoryID,
	}
	s.notes = append([]models.Note{note}, s.notes...)
	s.commitLocked(ChangeCreated, note.ID)
	return note.ID
}

// UpdateNote replaces title and content. Unknown ids are a silent no-op.
func (s *Store) UpdateNote(id, title, content string) {
	s.mu.Lock()
	i := s.findLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.notes[i].Title = title
	s.notes[i].Content = content
	s.notes[i].UpdatedAt = s.now()
	s.commitLocked(ChangeUpdated, id)
}

// UpdateNoteField mutates a single tracked field. Unknown ids, unknown
// fields, and incompatible values are all silent no-ops.
func (s *Store) UpdateNoteField(id string, field Field, value any) {
	s.mu.Lock()
	i := s.findLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}

	applied := true
	switch field {
	case FieldCategory:
		if v, ok := value.(string); ok {
			s.notes[i].Category = v
		} else {
			applied = false
		}
	case FieldBgColor:
		if v, ok := value.(string); ok {
			s.notes[i].BgColor = v
		} else {
			applied = false
		}
	case FieldFormatting:
		switch v := value.(type) {
		case *models.NoteFormat:
			s.notes[i].Formatting = v
		case models.NoteFormat:
			s.notes[i].Formatting = &v
		default:
			applied = false
		}
	case FieldAttachments:
		if v, ok := value.([]string); ok {
			s.notes[i].Attachments = v
		} else {
			applied = false
		}
	default:
		applied = false
	}

	if !applied {
		s.mu.Unlock()
		return
	}
	s.notes[i].UpdatedAt = s.now()
	s.commitLocked(ChangeUpdated, id)
}

// DeleteNote removes the note. Unknown ids are a silent no-op.
func (s *Store) DeleteNote(id string) {
	s.mu.Lock()
	i := s.findLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	s.commitLocked(ChangeDeleted, id)
}

// GetNoteByID returns a copy of the note, if present. Pure lookup.
func (s *Store) GetNoteByID(id string) (models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findLocked(id)
	if i < 0 {
		return models.Note{}, false
	}
	return s.notes[i].Clone(), true
}

// ToggleFavorite flips the favorite flag and refreshes updatedAt.
func (s *Store) ToggleFavorite(id string) {
	s.mu.Lock()
	i := s.findLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.notes[i].IsFavorite = !s.notes[i].IsFavorite
	s.notes[i].UpdatedAt = s.now()
	s.commitLocked(ChangeUpdated, id)
}

// ToggleLock locks an unlocked note, storing password verbatim, or unlocks
// a locked one, clearing the stored password (the argument is then
// ignored). The store never verifies passwords: confirming the password
// before unlocking is the caller's job. This is a convenience gate, not a
// security boundary.
func (s *Store) ToggleLock(id, password string) {
	s.mu.Lock()
	i := s.findLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	if s.notes[i].IsLocked {
		s.notes[i].IsLocked = false
		s.notes[i].LockPassword = ""
	} else {
		s.notes[i].IsLocked = true
		s.notes[i].LockPassword = password
	}
	s.notes[i].UpdatedAt = s.now()
	s.commitLocked(ChangeUpdated, id)
}

// DuplicateNote clones the source note under a fresh id with a suffixed
// title and reset timestamps, prepending the clone. Returns the new id, or
// empty string when the source does not exist.
func (s *Store) DuplicateNote(id string) string {
	s.mu.Lock()
	i := s.findLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return ""
	}
	clone := s.notes[i].Clone()
	clone.ID = s.newID()
	clone.Title += DuplicateSuffix
	now := s.now()
	clone.CreatedAt = now
	clone.UpdatedAt = now
	s.notes = append([]models.Note{clone}, s.notes...)
	s.commitLocked(ChangeCreated, clone.ID)
	return clone.ID
}

// AddCategory creates a category and returns its id.
func (s *Store) AddCategory(name, color string) string {
	s.mu.Lock()
	cat := models.Category{ID: s.newID(), Name: name, Color: color}
	s.categories = append(s.categories, cat)
	s.commitLocked(ChangeCategory, "")
	return cat.ID
}

// UpdateCategory renames/recolors a category in place.
func (s *Store) UpdateCategory(id, name, color string) {
	s.mu.Lock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories[i].Name = name
			s.categories[i].Color = color
			s.commitLocked(ChangeCategory, "")
			return
		}
	}
	s.mu.Unlock()
}

// DeleteCategory removes a category after reassigning its notes to the
// default category. Deleting the default category, or the sole remaining
// one, is a guarded no-op.
func (s *Store) DeleteCategory(id string) {
	s.mu.Lock()
	if id == models.DefaultCategoryID || len(s.categories) <= 1 {
		s.mu.Unlock()
		return
	}
	idx := -1
	for i := range s.categories {
		if s.categories[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	for i := range s.notes {
		if s.notes[i].Category == id {
			s.notes[i].Category = models.DefaultCategoryID
		}
	}
	s.categories = append(s.categories[:idx], s.categories[idx+1:]...)
	s.commitLocked(ChangeCategory, "")
}

// GetAllCategories returns the categories in insertion order.
func (s *Store) GetAllCategories() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Category(nil), s.categories...)
}

// GetFavoriteNotes returns the favorite notes in collection order.
func (s *Store) GetFavoriteNotes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Note
	for i := range s.notes {
		if s.notes[i].IsFavorite {
			out = append(out, s.notes[i].Clone())
		}
	}
	return out
}

// Notes returns a snapshot copy of the full collection.
func (s *Store) Notes() []models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Note, len(s.notes))
	for i := range s.notes {
		out[i] = s.notes[i].Clone()
	}
	return out
}

// Revision returns a counter that increases on every committed mutation.
// Derived views (search) use it for cache invalidation.
func (s *Store) Revision() uint64 {
	return s.rev.Load()
}

// ExportNotes serializes the full state for download.
func (s *Store) ExportNotes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob, err := codec.Encode(models.State{Notes: s.notes, Categories: s.categories})
	if err != nil {
		s.logger.Warn("export: encode failed", slog.String("error", err.Error()))
		return nil
	}
	return blob
}

// ImportNotes replaces the store's state with the parsed payload. Malformed
// payloads return false and leave everything untouched (atomic import).
// Categories are replaced only when the payload carries them; the default
// category is re-inserted if the imported list lacks it.
func (s *Store) ImportNotes(data []byte) bool {
	state, hasCategories, err := codec.Decode(data)
	if err != nil {
		s.logger.Warn("import rejected", slog.String("error", err.Error()))
		return false
	}
	s.mu.Lock()
	s.notes = state.Notes
	if hasCategories {
		s.categories = state.Categories
		s.ensureDefaultCategory()
	}
	s.commitLocked(ChangeImported, "")
	return true
}

// PersistedChecksum returns the checksum of the last snapshot written by
// this store. The watcher compares it against on-disk content to skip
// events caused by the store's own writes.
func (s *Store) PersistedChecksum() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistedSum
}

// replaceFromSnapshot hydrates the store from an externally written
// snapshot blob that has already been decoded. Used by the watcher.
func (s *Store) replaceFromSnapshot(state models.State, sum string) {
	s.mu.Lock()
	s.notes = state.Notes
	s.categories = state.Categories
	s.ensureDefaultCategory()
	s.persistedSum = sum
	s.rev.Add(1)
	s.mu.Unlock()
	if s.onChange != nil {
		s.onChange(ChangeReloaded, "")
	}
}
