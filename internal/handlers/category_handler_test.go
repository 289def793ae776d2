// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"shopadmin/internal/models"
)

// decodeEnvelope unmarshals the response envelope into a generic shape.
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (status string, data json.RawMessage, message string) {
	t.Helper()
	var env struct {
		Status  string          `json:"status"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, w.Body.String())
	}
	return env.Status, env.Data, env.Message
}

func TestCategoryHandlerCreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCategories(t, env.DB, "handler-drinks") })

	body := `{"name": "Handler Drinks", "slug": "handler-drinks", "description": "All **drinks**"}`
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/categories", strings.NewReader(body))
	env.Categories.Create(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	status, data, _ := decodeEnvelope(t, w)
	if status != "success" {
		t.Errorf("status: got %q", status)
	}

	var created categoryView
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("unmarshal created: %v", err)
	}
	if created.Level != 0 {
		t.Errorf("level: got %d, want 0", created.Level)
	}
	if !strings.Contains(created.DescriptionHTML, "<strong>drinks</strong>") {
		t.Errorf("description_html: got %q, want markdown rendered", created.DescriptionHTML)
	}

	// Get it back.
	w = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/api/categories/"+created.ID.String(), nil)
	r = withChiURLParam(r, "id", created.ID.String())
	env.Categories.Get(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("get status: got %d, want 200", w.Code)
	}
}

func TestCategoryHandlerCreateGeneratesSlug(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCategories(t, env.DB, "handler-hot-drinks") })

	body := `{"name": "Handler Hot Drinks"}`
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/categories", strings.NewReader(body))
	env.Categories.Create(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("create status: got %d (body %s)", w.Code, w.Body.String())
	}
	_, data, _ := decodeEnvelope(t, w)

	var created categoryView
	json.Unmarshal(data, &created)
	if created.Slug != "handler-hot-drinks" {
		t.Errorf("slug: got %q, want %q", created.Slug, "handler-hot-drinks")
	}
}

func TestCategoryHandlerDuplicateSlugConflicts(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCategories(t, env.DB, "handler-dupe") })

	body := `{"name": "Handler Dupe", "slug": "handler-dupe"}`
	w := httptest.NewRecorder()
	env.Categories.Create(w, httptest.NewRequest("POST", "/api/categories", strings.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("first create: got %d", w.Code)
	}

	w = httptest.NewRecorder()
	env.Categories.Create(w, httptest.NewRequest("POST", "/api/categories", strings.NewReader(body)))
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create: got %d, want 409", w.Code)
	}
}

func TestCategoryHandlerUpdateRejectsCycle(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCategories(t, env.DB, "handler-cycle-parent", "handler-cycle-child") })

	parent := mustCreateHandlerCategory(t, env, "Cycle Parent", "handler-cycle-parent", nil)
	child := mustCreateHandlerCategory(t, env, "Cycle Child", "handler-cycle-child", &parent.ID)

	// Try to move the parent under its own child.
	body := `{"name": "Cycle Parent", "slug": "handler-cycle-parent", "parent_id": "` + child.ID.String() + `"}`
	w := httptest.NewRecorder()
	r := httptest.NewRequest("PUT", "/api/categories/"+parent.ID.String(), strings.NewReader(body))
	r = withChiURLParam(r, "id", parent.ID.String())
	env.Categories.Update(w, r)

	if w.Code != http.StatusConflict {
		t.Errorf("cycle update: got %d, want 409 (body %s)", w.Code, w.Body.String())
	}
}

func TestCategoryHandlerDeleteGuardsChildren(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCategories(t, env.DB, "handler-del-parent", "handler-del-child") })

	parent := mustCreateHandlerCategory(t, env, "Del Parent", "handler-del-parent", nil)
	mustCreateHandlerCategory(t, env, "Del Child", "handler-del-child", &parent.ID)

	// Without cascade the delete is refused.
	w := httptest.NewRecorder()
	r := httptest.NewRequest("DELETE", "/api/categories/"+parent.ID.String(), nil)
	r = withChiURLParam(r, "id", parent.ID.String())
	env.Categories.Delete(w, r)

	if w.Code != http.StatusConflict {
		t.Fatalf("guarded delete: got %d, want 409", w.Code)
	}

	// With cascade the whole subtree goes.
	w = httptest.NewRecorder()
	r = httptest.NewRequest("DELETE", "/api/categories/"+parent.ID.String()+"?cascade=true", nil)
	r = withChiURLParam(r, "id", parent.ID.String())
	env.Categories.Delete(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("cascade delete: got %d, want 200", w.Code)
	}

	found, err := env.CategoryStore.FindByID(parent.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found != nil {
		t.Error("parent should be gone after cascade delete")
	}
}

func TestCategoryHandlerDeleteImpact(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCategories(t, env.DB, "handler-impact", "handler-impact-child") })

	parent := mustCreateHandlerCategory(t, env, "Impact", "handler-impact", nil)
	mustCreateHandlerCategory(t, env, "Impact Child", "handler-impact-child", &parent.ID)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/categories/"+parent.ID.String()+"/delete-impact", nil)
	r = withChiURLParam(r, "id", parent.ID.String())
	env.Categories.DeleteImpact(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("impact status: got %d", w.Code)
	}
	_, data, _ := decodeEnvelope(t, w)

	var impact struct {
		HasChildren bool `json:"has_children"`
		ChildCount  int  `json:"child_count"`
	}
	json.Unmarshal(data, &impact)
	if !impact.HasChildren || impact.ChildCount != 1 {
		t.Errorf("impact: got %+v, want has_children=true child_count=1", impact)
	}
}

func TestCategoryHandlerParentOptionsExcludesSubtree(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCategories(t, env.DB, "handler-opt-root", "handler-opt-child") })

	root := mustCreateHandlerCategory(t, env, "Opt Root", "handler-opt-root", nil)
	child := mustCreateHandlerCategory(t, env, "Opt Child", "handler-opt-child", &root.ID)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/categories/parent-options?exclude="+root.ID.String(), nil)
	env.Categories.ParentOptions(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("parent options status: got %d", w.Code)
	}
	_, data, _ := decodeEnvelope(t, w)

	var opts []struct {
		ID       uuid.UUID `json:"id"`
		Disabled bool      `json:"disabled"`
	}
	json.Unmarshal(data, &opts)

	foundRoot, foundChild := false, false
	for _, o := range opts {
		if o.ID == root.ID {
			foundRoot = true
			if !o.Disabled {
				t.Error("excluded node should be disabled")
			}
		}
		if o.ID == child.ID {
			foundChild = true
			if !o.Disabled {
				t.Error("descendant of excluded node should be disabled")
			}
		}
	}
	if !foundRoot || !foundChild {
		t.Errorf("options missing test nodes (root=%v child=%v)", foundRoot, foundChild)
	}
}

func TestCategoryHandlerTreeCached(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCategories(t, env.DB, "handler-cache-root") })

	mustCreateHandlerCategory(t, env, "Cache Root", "handler-cache-root", nil)

	// First call populates the cache.
	w := httptest.NewRecorder()
	env.Categories.Tree(w, httptest.NewRequest("GET", "/api/categories/tree", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("tree status: got %d", w.Code)
	}

	// Second call must serve the same payload.
	w2 := httptest.NewRecorder()
	env.Categories.Tree(w2, httptest.NewRequest("GET", "/api/categories/tree", nil))
	if w2.Code != http.StatusOK {
		t.Fatalf("cached tree status: got %d", w2.Code)
	}
	if w.Body.String() != w2.Body.String() {
		t.Error("cached tree payload differs from fresh payload")
	}
}

func TestCategoryHandlerRowsRespectExpansion(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCategories(t, env.DB, "handler-rows-root", "handler-rows-child") })

	root := mustCreateHandlerCategory(t, env, "Rows Root", "handler-rows-root", nil)
	child := mustCreateHandlerCategory(t, env, "Rows Child", "handler-rows-child", &root.ID)

	rowIDs := func(query string) map[uuid.UUID]bool {
		w := httptest.NewRecorder()
		env.Categories.Rows(w, httptest.NewRequest("GET", "/api/categories/rows"+query, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("rows status: got %d (body %s)", w.Code, w.Body.String())
		}
		_, data, _ := decodeEnvelope(t, w)
		var rows []struct {
			ID          uuid.UUID `json:"id"`
			HasChildren bool      `json:"has_children"`
		}
		if err := json.Unmarshal(data, &rows); err != nil {
			t.Fatalf("unmarshal rows: %v", err)
		}
		ids := make(map[uuid.UUID]bool)
		for _, row := range rows {
			ids[row.ID] = row.HasChildren
		}
		return ids
	}

	// Collapsed: the root is visible, the child is not.
	collapsed := rowIDs("")
	if hasChildren, ok := collapsed[root.ID]; !ok || !hasChildren {
		t.Errorf("collapsed root: present=%v has_children=%v", ok, hasChildren)
	}
	if _, ok := collapsed[child.ID]; ok {
		t.Error("child visible while root collapsed")
	}

	// Expanding the root reveals the child.
	expanded := rowIDs("?expanded=" + root.ID.String())
	if _, ok := expanded[child.ID]; !ok {
		t.Error("child not visible after expanding root")
	}

	// expanded=all reveals everything too.
	all := rowIDs("?expanded=all")
	if _, ok := all[child.ID]; !ok {
		t.Error("child not visible with expanded=all")
	}

	// Garbage expansion ids are a 400.
	w := httptest.NewRecorder()
	env.Categories.Rows(w, httptest.NewRequest("GET", "/api/categories/rows?expanded=nope", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad expanded id: got %d, want 400", w.Code)
	}
}

func TestCategoryHandlerInvalidID(t *testing.T) {
	env := newTestEnv(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/categories/nope", nil)
	r = withChiURLParam(r, "id", "nope")
	env.Categories.Get(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid id: got %d, want 400", w.Code)
	}
}

func TestCategoryHandlerNotFound(t *testing.T) {
	env := newTestEnv(t)

	id := uuid.New()
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/categories/"+id.String(), nil)
	r = withChiURLParam(r, "id", id.String())
	env.Categories.Get(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("missing category: got %d, want 404", w.Code)
	}
}

// mustCreateHandlerCategory inserts a category through the store for
// handler test setup.
func mustCreateHandlerCategory(t *testing.T, env *testEnv, name, slug string, parentID *uuid.UUID) *models.Category {
	t.Helper()
	c, err := env.CategoryStore.Create(&models.Category{
		Name:     name,
		Slug:     slug,
		ParentID: parentID,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create category %s: %v", slug, err)
	}
	return c
}

func TestCategoryHandlerReorderRejectsSwapCycle(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCategories(t, env.DB, "handler-swap-a", "handler-swap-b") })

	a := mustCreateHandlerCategory(t, env, "Swap A", "handler-swap-a", nil)
	b := mustCreateHandlerCategory(t, env, "Swap B", "handler-swap-b", nil)

	// Two root categories swapped under each other would form a cycle
	// that no single-item check can see.
	body := `{"items": [
		{"id": "` + a.ID.String() + `", "parent_id": "` + b.ID.String() + `", "order": 0},
		{"id": "` + b.ID.String() + `", "parent_id": "` + a.ID.String() + `", "order": 0}
	]}`
	w := httptest.NewRecorder()
	env.Categories.Reorder(w, httptest.NewRequest("POST", "/api/categories/reorder", strings.NewReader(body)))

	if w.Code != http.StatusConflict {
		t.Fatalf("swap reorder: got %d, want 409 (body %s)", w.Code, w.Body.String())
	}

	// Both categories are still roots.
	for _, id := range []uuid.UUID{a.ID, b.ID} {
		got, err := env.CategoryStore.FindByID(id)
		if err != nil || got == nil {
			t.Fatalf("FindByID after rejected reorder: %v", err)
		}
		if got.ParentID != nil {
			t.Errorf("%s: parent = %v, want nil", got.Slug, got.ParentID)
		}
	}
}

func TestCategoryHandlerReorderReparents(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCategories(t, env.DB, "handler-move-a", "handler-move-b") })

	a := mustCreateHandlerCategory(t, env, "Move A", "handler-move-a", nil)
	b := mustCreateHandlerCategory(t, env, "Move B", "handler-move-b", nil)

	body := `{"items": [{"id": "` + b.ID.String() + `", "parent_id": "` + a.ID.String() + `", "order": 0}]}`
	w := httptest.NewRecorder()
	env.Categories.Reorder(w, httptest.NewRequest("POST", "/api/categories/reorder", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("reorder: got %d (body %s)", w.Code, w.Body.String())
	}

	got, _ := env.CategoryStore.FindByID(b.ID)
	if got == nil || got.ParentID == nil || *got.ParentID != a.ID {
		t.Fatalf("B parent after reorder = %v, want %s", got, a.ID)
	}
	if got.Level != 1 {
		t.Errorf("B level after reorder = %d, want 1", got.Level)
	}
}

func TestCategoryHandlerCreateUnknownParent(t *testing.T) {
	env := newTestEnv(t)

	ghost := uuid.New()
	body := `{"name": "Ghost Child", "slug": "handler-ghost-child", "parent_id": "` + ghost.String() + `"}`
	w := httptest.NewRecorder()
	env.Categories.Create(w, httptest.NewRequest("POST", "/api/categories", strings.NewReader(body)))

	if w.Code != http.StatusBadRequest {
		t.Errorf("create under unknown parent: got %d, want 400 (body %s)", w.Code, w.Body.String())
	}
}
