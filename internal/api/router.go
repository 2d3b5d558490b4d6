package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lfroes/notas/internal/notestore"
	"github.com/lfroes/notas/internal/search"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(store *notestore.Store, engine *search.Engine, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(store, engine)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD and toggles.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Patch("/notes/{id}", h.PatchNote)
	r.Delete("/notes/{id}", h.DeleteNote)
	r.Post("/notes/{id}/favorite", h.ToggleFavorite)
	r.Post("/notes/{id}/lock", h.ToggleLock)
	r.Post("/notes/{id}/duplicate", h.DuplicateNote)
	r.Post("/notes/{id}/format", h.FormatNote)
	r.Get("/notes/{id}/segments", h.NoteSegments)

	// Categories.
	r.Get("/categories", h.ListCategories)
	r.Post("/categories", h.CreateCategory)
	r.Put("/categories/{id}", h.UpdateCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)

	// Derived views.
	r.Get("/search", h.Search)
	r.Get("/stats", h.Stats)

	// Whole-state transfer.
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
