package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lfroes/notas/internal/codec"
	"github.com/lfroes/notas/internal/formatting"
	"github.com/lfroes/notas/internal/models"
	"github.com/lfroes/notas/internal/notestore"
	"github.com/lfroes/notas/internal/search"
	"github.com/lfroes/notas/internal/stats"
)

// maxBodySize bounds request bodies; imports carry whole-state blobs with
// embedded attachments, so this is generous.
const maxBodySize = 50 << 20

// Handler holds API route handlers over the store and the search engine.
type Handler struct {
	store  *notestore.Store
	engine *search.Engine
}

// NewHandler creates a new Handler.
func NewHandler(store *notestore.Store, engine *search.Engine) *Handler {
	return &Handler{store: store, engine: engine}
}

// ListNotes handles GET /notes. ?favorites=true restricts to favorites.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	var notes []models.Note
	if fav, _ := strconv.ParseBool(r.URL.Query().Get("favorites")); fav {
		notes = h.store.GetFavoriteNotes()
	} else {
		notes = h.store.Notes()
	}
	if notes == nil {
		notes = []models.Note{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// CreateNote handles POST /notes: a new empty note in the default category.
func (h *Handler) CreateNote(w http.ResponseWriter, _ *http.Request) {
	id := h.store.AddNote()
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

// GetNote handles GET /notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, ok := h.store.GetNoteByID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNote handles PUT /notes/{id}: replaces title and content.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	id := chi.URLParam(r, "id")
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if _, ok := h.store.GetNoteByID(id); !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	h.store.UpdateNote(id, req.Title, req.Content)
	note, _ := h.store.GetNoteByID(id)
	writeJSON(w, http.StatusOK, note)
}

// PatchNote handles PATCH /notes/{id}: generic single-field mutation.
func (h *Handler) PatchNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	id := chi.URLParam(r, "id")
	var req PatchNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if _, ok := h.store.GetNoteByID(id); !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	field := notestore.Field(req.Field)
	var value any
	switch field {
	case notestore.FieldCategory, notestore.FieldBgColor:
		var v string
		if err := json.Unmarshal(req.Value, &v); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("value must be a string"))
			return
		}
		value = v
	case notestore.FieldFormatting:
		var v models.NoteFormat
		if err := json.Unmarshal(req.Value, &v); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("value must be a formatting object"))
			return
		}
		value = &v
	case notestore.FieldAttachments:
		var v []string
		if err := json.Unmarshal(req.Value, &v); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("value must be a string list"))
			return
		}
		value = v
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("unknown field"))
		return
	}

	h.store.UpdateNoteField(id, field, value)
	note, _ := h.store.GetNoteByID(id)
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.store.GetNoteByID(id); !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	h.store.DeleteNote(id)
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite handles POST /notes/{id}/favorite.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.store.GetNoteByID(id); !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	h.store.ToggleFavorite(id)
	note, _ := h.store.GetNoteByID(id)
	writeJSON(w, http.StatusOK, note)
}

// ToggleLock handles POST /notes/{id}/lock. Locking stores the password
// verbatim; unlocking clears it. The password comparison on unlock is the
// client's responsibility.
func (h *Handler) ToggleLock(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	var req LockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if _, ok := h.store.GetNoteByID(id); !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	h.store.ToggleLock(id, req.Password)
	note, _ := h.store.GetNoteByID(id)
	writeJSON(w, http.StatusOK, note)
}

// FormatNote handles POST /notes/{id}/format: applies or removes a style
// range, or adds/toggles a checklist marker, then writes the result
// through the note's formatting field.
func (h *Handler) FormatNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	var req FormatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	note, ok := h.store.GetNoteByID(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	var current models.NoteFormat
	if note.Formatting != nil {
		current = *note.Formatting
	}

	var next models.NoteFormat
	switch req.Action {
	case "apply", "remove":
		style := formatting.Style(req.Style)
		switch style {
		case formatting.Bold, formatting.Italic, formatting.Underline:
		default:
			writeJSON(w, http.StatusBadRequest, errorBody("unknown style"))
			return
		}
		if req.Action == "apply" {
			next = formatting.Apply(current, style, req.Start, req.End)
		} else {
			next = formatting.Remove(current, style, req.Start, req.End)
		}
	case "checklist-add":
		next = formatting.AddChecklistItem(current, req.Position)
	case "checklist-toggle":
		next = formatting.ToggleChecklistItem(current, req.Position)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("unknown action"))
		return
	}

	h.store.UpdateNoteField(id, notestore.FieldFormatting, &next)
	updated, _ := h.store.GetNoteByID(id)
	writeJSON(w, http.StatusOK, updated)
}

// NoteSegments handles GET /notes/{id}/segments: the content split into
// runs of constant style for rendering.
func (h *Handler) NoteSegments(w http.ResponseWriter, r *http.Request) {
	note, ok := h.store.GetNoteByID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	segs := formatting.Segments(note.Content, note.Formatting)
	if segs == nil {
		segs = []formatting.Segment{}
	}
	writeJSON(w, http.StatusOK, SegmentsResponse{Segments: segs})
}

// DuplicateNote handles POST /notes/{id}/duplicate.
func (h *Handler) DuplicateNote(w http.ResponseWriter, r *http.Request) {
	newID := h.store.DuplicateNote(chi.URLParam(r, "id"))
	if newID == "" {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusCreated, IDResponse{ID: newID})
}

// ListCategories handles GET /categories.
func (h *Handler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CategoryListResponse{Categories: h.store.GetAllCategories()})
}

// CreateCategory handles POST /categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	id := h.store.AddCategory(req.Name, req.Color)
	writeJSON(w, http.StatusCreated, IDResponse{ID: id})
}

// UpdateCategory handles PUT /categories/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.store.UpdateCategory(chi.URLParam(r, "id"), req.Name, req.Color)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCategory handles DELETE /categories/{id}. Deleting the default or
// sole category is a guarded no-op and still answers 204.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	h.store.DeleteCategory(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /search with the full option set as query parameters.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := search.DefaultOptions()
	if v := q.Get("inTitle"); v != "" {
		opts.InTitle, _ = strconv.ParseBool(v)
	}
	if v := q.Get("inContent"); v != "" {
		opts.InContent, _ = strconv.ParseBool(v)
	}
	opts.CaseSensitive, _ = strconv.ParseBool(q.Get("caseSensitive"))
	opts.MatchWholeWord, _ = strconv.ParseBool(q.Get("matchWholeWord"))
	opts.OnlyFavorites, _ = strconv.ParseBool(q.Get("onlyFavorites"))
	opts.CategoryID = q.Get("categoryId")
	for param, dst := range map[string]**time.Time{"dateFrom": &opts.DateFrom, "dateTo": &opts.DateTo} {
		if v := q.Get(param); v != "" {
			day, err := time.ParseInLocation("2006-01-02", v, time.Local)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorBody(param+" must be YYYY-MM-DD"))
				return
			}
			*dst = &day
		}
	}

	results := h.engine.Search(q.Get("q"), opts)
	if results == nil {
		results = []models.Note{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results, Total: len(results)})
}

// Stats handles GET /stats.
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	s := stats.Compute(h.store.Notes(), h.store.GetAllCategories(), time.Now())
	writeJSON(w, http.StatusOK, s)
}

// Export handles GET /export: the full state as a downloadable JSON file
// with a date-stamped filename.
func (h *Handler) Export(w http.ResponseWriter, _ *http.Request) {
	blob := h.store.ExportNotes()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+codec.ExportFilename(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

// Import handles POST /import. A malformed payload answers 400 and leaves
// the store untouched.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	if !h.store.ImportNotes(data) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid import payload"))
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{Success: true})
}
