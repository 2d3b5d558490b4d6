package search

import (
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lfroes/notas/internal/models"
)

const defaultCacheSize = 128

// Source is the note collection a cached engine reads from. Revision must
// change on every mutation so stale results are never served.
type Source interface {
	Notes() []models.Note
	Revision() uint64
}

// Engine is a thin caching wrapper around Search. Results are memoized per
// (revision, query, options); a store mutation bumps the revision, which
// naturally invalidates every cached entry. Semantically the engine is
// indistinguishable from calling Search directly.
type Engine struct {
	src   Source
	cache *lru.Cache[string, []models.Note]
}

// NewEngine creates an engine over src with a bounded result cache.
func NewEngine(src Source) (*Engine, error) {
	cache, err := lru.New[string, []models.Note](defaultCacheSize)
	if err != nil {
		return nil, err
	}
	return &Engine{src: src, cache: cache}, nil
}

// Search returns the current result view for query and opts. Callers get
// their own copies; mutating a result cannot reach the cached entry.
func (e *Engine) Search(query string, opts Options) []models.Note {
	key := cacheKey(e.src.Revision(), query, opts)
	results, ok := e.cache.Get(key)
	if !ok {
		results = Search(e.src.Notes(), query, opts)
		e.cache.Add(key, results)
	}
	if results == nil {
		return nil
	}
	out := make([]models.Note, len(results))
	for i := range results {
		out[i] = results[i].Clone()
	}
	return out
}

func cacheKey(revision uint64, query string, opts Options) string {
	raw, _ := json.Marshal(opts)
	return fmt.Sprintf("%d|%s|%s", revision, query, raw)
}
