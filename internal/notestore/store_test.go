package notestore

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lfroes/notas/internal/models"
	"github.com/lfroes/notas/internal/storage"
)

// testStore builds a store over a temp snapshot file with a deterministic
// clock (each call to now advances one millisecond).
func testStore(t *testing.T, opts ...StoreOption) (*Store, *storage.File) {
	t.Helper()
	provider, err := storage.NewFile(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	var tick models.Millis
	base := []StoreOption{
		WithClock(func() models.Millis {
			tick++
			return 1700000000000 + tick
		}),
	}
	s, err := New(provider, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, provider
}

func TestNew_SeedsDefaultCategory(t *testing.T) {
	s, _ := testStore(t)
	cats := s.GetAllCategories()
	if len(cats) != 1 || cats[0].ID != models.DefaultCategoryID {
		t.Fatalf("fresh store categories = %+v, want just the default", cats)
	}
}

func TestAddNote_DistinctIDsPrepended(t *testing.T) {
	s, _ := testStore(t)
	seen := map[string]bool{}
	var last string
	for i := 0; i < 50; i++ {
		id := s.AddNote()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		last = id
	}
	notes := s.Notes()
	if len(notes) != 50 {
		t.Fatalf("len(notes) = %d", len(notes))
	}
	if notes[0].ID != last {
		t.Errorf("newest note should be first, got %q", notes[0].ID)
	}
	n := notes[0]
	if n.Title != "" || n.Content != "" || n.Category != models.DefaultCategoryID || n.CreatedAt != n.UpdatedAt {
		t.Errorf("new note defaults wrong: %+v", n)
	}
}

func TestUpdateNote(t *testing.T) {
	s, _ := testStore(t)
	id := s.AddNote()
	before, _ := s.GetNoteByID(id)

	s.UpdateNote(id, "Compras", "leite ovos")
	got, ok := s.GetNoteByID(id)
	if !ok {
		t.Fatal("note vanished")
	}
	if got.Title != "Compras" || got.Content != "leite ovos" {
		t.Errorf("note = %+v", got)
	}
	if got.UpdatedAt <= before.UpdatedAt {
		t.Errorf("updatedAt %d should advance past %d", got.UpdatedAt, before.UpdatedAt)
	}
	if got.CreatedAt != before.CreatedAt {
		t.Error("createdAt is immutable")
	}
}

func TestUpdateNote_UnknownIDNoOp(t *testing.T) {
	s, _ := testStore(t)
	s.AddNote()
	before := s.Notes()
	rev := s.Revision()

	s.UpdateNote("missing", "t", "c")
	if !reflect.DeepEqual(s.Notes(), before) {
		t.Error("unknown id must not mutate anything")
	}
	if s.Revision() != rev {
		t.Error("no-op must not bump the revision")
	}
}

func TestUpdateNoteField(t *testing.T) {
	s, _ := testStore(t)
	id := s.AddNote()

	s.UpdateNoteField(id, FieldBgColor, "#FFCC00")
	s.UpdateNoteField(id, FieldCategory, "work")
	s.UpdateNoteField(id, FieldAttachments, []string{"blob:1"})
	s.UpdateNoteField(id, FieldFormatting, models.NoteFormat{
		Bold: []models.FormatRange{{Start: 0, End: 3}},
	})

	got, _ := s.GetNoteByID(id)
	if got.BgColor != "#FFCC00" || got.Category != "work" {
		t.Errorf("note = %+v", got)
	}
	if len(got.Attachments) != 1 || got.Attachments[0] != "blob:1" {
		t.Errorf("attachments = %v", got.Attachments)
	}
	if got.Formatting == nil || len(got.Formatting.Bold) != 1 {
		t.Errorf("formatting = %+v", got.Formatting)
	}
}

func TestUpdateNoteField_BadFieldOrValueNoOp(t *testing.T) {
	s, _ := testStore(t)
	id := s.AddNote()
	before, _ := s.GetNoteByID(id)

	s.UpdateNoteField(id, Field("unknown"), "x")
	s.UpdateNoteField(id, FieldBgColor, 42)

	got, _ := s.GetNoteByID(id)
	if !reflect.DeepEqual(got, before) {
		t.Errorf("bad field/value should be a no-op: %+v vs %+v", got, before)
	}
}

func TestDeleteNote(t *testing.T) {
	s, _ := testStore(t)
	id := s.AddNote()
	s.DeleteNote(id)
	if _, ok := s.GetNoteByID(id); ok {
		t.Error("note should be gone")
	}
	s.DeleteNote("missing") // silent no-op
}

func TestToggleFavorite_IdempotentPair(t *testing.T) {
	s, _ := testStore(t)
	id := s.AddNote()

	s.ToggleFavorite(id)
	got, _ := s.GetNoteByID(id)
	if !got.IsFavorite {
		t.Error("first toggle should favorite")
	}
	if favs := s.GetFavoriteNotes(); len(favs) != 1 || favs[0].ID != id {
		t.Errorf("GetFavoriteNotes = %+v", favs)
	}

	s.ToggleFavorite(id)
	got, _ = s.GetNoteByID(id)
	if got.IsFavorite {
		t.Error("second toggle should restore the original value")
	}
	if favs := s.GetFavoriteNotes(); len(favs) != 0 {
		t.Errorf("GetFavoriteNotes = %+v", favs)
	}
}

func TestToggleLock(t *testing.T) {
	s, _ := testStore(t)
	id := s.AddNote()

	s.ToggleLock(id, "1234")
	got, _ := s.GetNoteByID(id)
	if !got.IsLocked || got.LockPassword != "1234" {
		t.Errorf("lock state = %+v", got)
	}

	// Unlock ignores the password argument and clears the stored one.
	s.ToggleLock(id, "wrong-and-irrelevant")
	got, _ = s.GetNoteByID(id)
	if got.IsLocked || got.LockPassword != "" {
		t.Errorf("unlock state = %+v", got)
	}
}

func TestDuplicateNote(t *testing.T) {
	s, _ := testStore(t)
	id := s.AddNote()
	s.UpdateNote(id, "Plano", "conteúdo")
	s.ToggleFavorite(id)
	src, _ := s.GetNoteByID(id)

	dupID := s.DuplicateNote(id)
	if dupID == "" || dupID == id {
		t.Fatalf("DuplicateNote = %q", dupID)
	}
	dup, ok := s.GetNoteByID(dupID)
	if !ok {
		t.Fatal("duplicate missing")
	}
	if dup.Title != "Plano"+DuplicateSuffix {
		t.Errorf("title = %q", dup.Title)
	}
	if dup.Content != src.Content || dup.IsFavorite != src.IsFavorite {
		t.Errorf("fields not cloned: %+v", dup)
	}
	if dup.CreatedAt != dup.UpdatedAt || dup.CreatedAt <= src.CreatedAt {
		t.Errorf("timestamps should be reset to now: %+v vs src %+v", dup, src)
	}
	if s.Notes()[0].ID != dupID {
		t.Error("duplicate should be prepended")
	}
}

func TestDuplicateNote_MissingSource(t *testing.T) {
	s, _ := testStore(t)
	if got := s.DuplicateNote("missing"); got != "" {
		t.Errorf("DuplicateNote = %q, want empty sentinel", got)
	}
}

func TestCategories_CRUD(t *testing.T) {
	s, _ := testStore(t)
	id := s.AddCategory("Trabalho", "#FF2D55")
	if id == "" {
		t.Fatal("empty category id")
	}
	s.UpdateCategory(id, "Estudos", "#5856D6")
	cats := s.GetAllCategories()
	if len(cats) != 2 || cats[1].Name != "Estudos" || cats[1].Color != "#5856D6" {
		t.Errorf("categories = %+v", cats)
	}
}

func TestDeleteCategory_GuardsDefaultAndSole(t *testing.T) {
	s, _ := testStore(t)

	// Sole remaining category (which is also the default).
	s.DeleteCategory(models.DefaultCategoryID)
	if len(s.GetAllCategories()) != 1 {
		t.Fatal("default/sole category must survive")
	}

	// Default stays undeletable even with siblings around.
	s.AddCategory("Trabalho", "#FF2D55")
	s.DeleteCategory(models.DefaultCategoryID)
	if len(s.GetAllCategories()) != 2 {
		t.Error("default category must never be deleted")
	}
}

func TestDeleteCategory_ReassignsNotes(t *testing.T) {
	s, _ := testStore(t)
	catID := s.AddCategory("Trabalho", "#FF2D55")
	a := s.AddNote()
	b := s.AddNote()
	s.UpdateNoteField(a, FieldCategory, catID)
	s.UpdateNoteField(b, FieldCategory, catID)

	s.DeleteCategory(catID)

	for _, id := range []string{a, b} {
		got, _ := s.GetNoteByID(id)
		if got.Category != models.DefaultCategoryID {
			t.Errorf("note %s category = %q, want default", id, got.Category)
		}
	}
	for _, c := range s.GetAllCategories() {
		if c.ID == catID {
			t.Error("category should be removed")
		}
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	s, _ := testStore(t)
	id := s.AddNote()
	s.UpdateNote(id, "Compras", "leite")
	s.ToggleLock(id, "pw")
	s.UpdateNoteField(id, FieldFormatting, models.NoteFormat{
		Italic:    []models.FormatRange{{Start: 1, End: 4}},
		Checklist: []models.ChecklistItem{{Position: 0, Checked: true}},
	})
	s.AddCategory("Trabalho", "#FF2D55")

	notesBefore, catsBefore := s.Notes(), s.GetAllCategories()

	if !s.ImportNotes(s.ExportNotes()) {
		t.Fatal("round-trip import should succeed")
	}
	if !reflect.DeepEqual(s.Notes(), notesBefore) {
		t.Errorf("notes changed:\n got  %+v\n want %+v", s.Notes(), notesBefore)
	}
	if !reflect.DeepEqual(s.GetAllCategories(), catsBefore) {
		t.Errorf("categories changed:\n got  %+v\n want %+v", s.GetAllCategories(), catsBefore)
	}
}

func TestImportNotes_MalformedAtomic(t *testing.T) {
	s, _ := testStore(t)
	s.AddNote()
	notesBefore, catsBefore := s.Notes(), s.GetAllCategories()
	rev := s.Revision()

	for _, payload := range []string{"not json", `{"categories": []}`, `{"notes": 5}`} {
		if s.ImportNotes([]byte(payload)) {
			t.Errorf("ImportNotes(%q) should fail", payload)
		}
	}
	if !reflect.DeepEqual(s.Notes(), notesBefore) || !reflect.DeepEqual(s.GetAllCategories(), catsBefore) {
		t.Error("failed import must leave state untouched")
	}
	if s.Revision() != rev {
		t.Error("failed import must not bump the revision")
	}
}

func TestImportNotes_KeepsCategoriesWhenAbsent(t *testing.T) {
	s, _ := testStore(t)
	s.AddCategory("Trabalho", "#FF2D55")
	catsBefore := s.GetAllCategories()

	if !s.ImportNotes([]byte(`{"notes": [{"id": "x", "title": "t"}]}`)) {
		t.Fatal("import should succeed")
	}
	if !reflect.DeepEqual(s.GetAllCategories(), catsBefore) {
		t.Error("categories must be kept when the payload has none")
	}
	if notes := s.Notes(); len(notes) != 1 || notes[0].ID != "x" {
		t.Errorf("notes = %+v", notes)
	}
}

func TestImportNotes_RestoresDefaultCategory(t *testing.T) {
	s, _ := testStore(t)
	if !s.ImportNotes([]byte(`{"notes": [], "categories": [{"id": "c1", "name": "Solo", "color": "#000"}]}`)) {
		t.Fatal("import should succeed")
	}
	cats := s.GetAllCategories()
	if len(cats) != 2 || cats[0].ID != models.DefaultCategoryID {
		t.Errorf("default category must be re-inserted, got %+v", cats)
	}
}

func TestPersistence_WriteThroughAndHydrate(t *testing.T) {
	provider, err := storage.NewFile(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	s1, err := New(provider)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id := s1.AddNote()
	s1.UpdateNote(id, "Persistida", "conteúdo")
	catID := s1.AddCategory("Trabalho", "#FF2D55")

	// A second store over the same provider sees the committed state.
	s2, err := New(provider)
	if err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	got, ok := s2.GetNoteByID(id)
	if !ok || got.Title != "Persistida" {
		t.Errorf("rehydrated note = %+v, ok=%v", got, ok)
	}
	found := false
	for _, c := range s2.GetAllCategories() {
		found = found || c.ID == catID
	}
	if !found {
		t.Error("rehydrated store lost a category")
	}
}

func TestOnChange_Events(t *testing.T) {
	var events []string
	s, _ := testStore(t, WithOnChange(func(kind ChangeKind, id string) {
		events = append(events, fmt.Sprintf("%s:%v", kind, id != ""))
	}))

	id := s.AddNote()
	s.UpdateNote(id, "t", "c")
	s.DeleteNote(id)
	s.AddCategory("X", "#000")
	s.ImportNotes([]byte(`{"notes": []}`))

	want := []string{"created:true", "updated:true", "deleted:true", "category:false", "imported:false"}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestRevision_BumpsOnMutation(t *testing.T) {
	s, _ := testStore(t)
	r0 := s.Revision()
	id := s.AddNote()
	if s.Revision() == r0 {
		t.Error("AddNote should bump revision")
	}
	r1 := s.Revision()
	s.ToggleFavorite(id)
	if s.Revision() == r1 {
		t.Error("ToggleFavorite should bump revision")
	}
	s.GetNoteByID(id)
	s.Notes()
	if s.Revision() != r1+1 {
		t.Error("reads must not bump revision")
	}
}
