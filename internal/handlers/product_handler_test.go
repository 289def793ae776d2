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

func TestProductHandlerCreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() {
		cleanProducts(t, env.DB, "handler-espresso")
		cleanCategories(t, env.DB, "handler-prod-cat")
	})

	cat := mustCreateHandlerCategory(t, env, "Prod Cat", "handler-prod-cat", nil)

	body := `{
		"name": "Handler Espresso",
		"slug": "handler-espresso",
		"price": "24.50",
		"short_description": "Dark roast beans",
		"description": "Best with *milk*.",
		"category_ids": ["` + cat.ID.String() + `"]
	}`
	w := httptest.NewRecorder()
	env.Products.Create(w, httptest.NewRequest("POST", "/api/products", strings.NewReader(body)))

	if w.Code != http.StatusCreated {
		t.Fatalf("create status: got %d (body %s)", w.Code, w.Body.String())
	}
	_, data, _ := decodeEnvelope(t, w)

	var created models.Product
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Price == nil || *created.Price != "24.50" {
		t.Errorf("price: got %v, want 24.50", created.Price)
	}
	if !strings.Contains(created.DescriptionHTML, "<em>milk</em>") {
		t.Errorf("description_html: got %q, want markdown rendered", created.DescriptionHTML)
	}

	// Get returns product plus assigned category ids.
	w = httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/products/"+created.ID.String(), nil)
	r = withChiURLParam(r, "id", created.ID.String())
	env.Products.Get(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("get status: got %d", w.Code)
	}
	_, data, _ = decodeEnvelope(t, w)

	var payload struct {
		Product     models.Product `json:"product"`
		CategoryIDs []uuid.UUID    `json:"category_ids"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal get: %v", err)
	}
	if len(payload.CategoryIDs) != 1 || payload.CategoryIDs[0] != cat.ID {
		t.Errorf("category_ids: got %v, want [%s]", payload.CategoryIDs, cat.ID)
	}
}

func TestProductHandlerUpdateReplacesCategories(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() {
		cleanProducts(t, env.DB, "handler-tea")
		cleanCategories(t, env.DB, "handler-tea-cat-a", "handler-tea-cat-b")
	})

	catA := mustCreateHandlerCategory(t, env, "Tea Cat A", "handler-tea-cat-a", nil)
	catB := mustCreateHandlerCategory(t, env, "Tea Cat B", "handler-tea-cat-b", nil)

	created, err := env.ProductStore.Create(&models.Product{Name: "Handler Tea", Slug: "handler-tea", IsActive: true})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if err := env.ProductStore.SetCategories(created.ID, []uuid.UUID{catA.ID}); err != nil {
		t.Fatalf("set categories: %v", err)
	}

	body := `{"name": "Handler Tea", "slug": "handler-tea", "category_ids": ["` + catB.ID.String() + `"]}`
	w := httptest.NewRecorder()
	r := httptest.NewRequest("PUT", "/api/products/"+created.ID.String(), strings.NewReader(body))
	r = withChiURLParam(r, "id", created.ID.String())
	env.Products.Update(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("update status: got %d (body %s)", w.Code, w.Body.String())
	}

	ids, err := env.ProductStore.Categories(created.ID)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(ids) != 1 || ids[0] != catB.ID {
		t.Errorf("category ids after update: got %v, want [%s]", ids, catB.ID)
	}
}

func TestProductHandlerValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"slug": "x"}`},
		{"bad slug", `{"name": "X", "slug": "Not A Slug"}`},
		{"unknown field", `{"name": "X", "bogus": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.Products.Create(w, httptest.NewRequest("POST", "/api/products", strings.NewReader(tt.body)))
			if w.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400", w.Code)
			}
		})
	}
}

func TestProductHandlerDelete(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.ProductStore.Create(&models.Product{Name: "Doomed", Slug: "handler-doomed", IsActive: true})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest("DELETE", "/api/products/"+created.ID.String(), nil)
	r = withChiURLParam(r, "id", created.ID.String())
	env.Products.Delete(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("delete status: got %d", w.Code)
	}

	found, _ := env.ProductStore.FindByID(created.ID)
	if found != nil {
		t.Error("expected nil after delete")
	}
}

func TestProductHandlerNotFound(t *testing.T) {
	env := newTestEnv(t)

	id := uuid.New()
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/products/"+id.String(), nil)
	r = withChiURLParam(r, "id", id.String())
	env.Products.Get(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("missing product: got %d, want 404", w.Code)
	}
}
