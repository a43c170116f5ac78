package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/agora-shop/api/internal/store"
	"github.com/go-chi/chi/v5"
)

// mockProductStore is a map-backed ProductStore.
type mockProductStore struct {
	nextID   int64
	products map[int64]store.Product
}

func newMockProductStore() *mockProductStore {
	return &mockProductStore{products: make(map[int64]store.Product)}
}

func (m *mockProductStore) ListProducts(ctx context.Context) ([]store.Product, error) {
	out := make([]store.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockProductStore) CreateProduct(ctx context.Context, arg store.CreateProductParams) (store.Product, error) {
	m.nextID++
	p := store.Product{
		ID:       m.nextID,
		Name:     arg.Name,
		ImageUrl: arg.ImageUrl,
		Price:    arg.Price,
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *mockProductStore) UpdateProduct(ctx context.Context, arg store.UpdateProductParams) (int64, error) {
	p, ok := m.products[arg.ID]
	if !ok {
		return 0, nil
	}
	if arg.Name.Valid {
		p.Name = arg.Name.String
	}
	if arg.ImageUrl.Valid {
		p.ImageUrl = arg.ImageUrl
	}
	if arg.Price.Valid {
		p.Price = arg.Price.Int64
	}
	m.products[arg.ID] = p
	return 1, nil
}

func (m *mockProductStore) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	if _, ok := m.products[id]; !ok {
		return 0, nil
	}
	delete(m.products, id)
	return 1, nil
}

func newProductRouter(s ProductStore) chi.Router {
	h := NewProductHandler(s)
	r := chi.NewRouter()
	r.Get("/api/products", h.List)
	r.Post("/api/products", h.Create)
	r.Put("/api/products/{id}", h.Update)
	r.Delete("/api/products/{id}", h.Delete)
	return r
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCreateAndListProducts(t *testing.T) {
	router := newProductRouter(newMockProductStore())

	rr := doJSON(t, router, "POST", "/api/products", map[string]any{
		"name":     "Widget",
		"imageUrl": "/uploads/widget.jpg",
		"price":    500,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status: got %d, want %d, body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var created productResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal created: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected a non-zero id")
	}
	if created.Name != "Widget" || created.Price != 500 {
		t.Errorf("created: %+v", created)
	}
	if created.ImageURL == nil || *created.ImageURL != "/uploads/widget.jpg" {
		t.Errorf("imageUrl: got %v", created.ImageURL)
	}

	rr = doJSON(t, router, "GET", "/api/products", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status: got %d, want %d", rr.Code, http.StatusOK)
	}
	var listed []productResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Errorf("list: %+v", listed)
	}
}

func TestCreateProductWithoutImage(t *testing.T) {
	router := newProductRouter(newMockProductStore())

	rr := doJSON(t, router, "POST", "/api/products", map[string]any{
		"name":  "Plain",
		"price": 100,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusCreated)
	}
	var created productResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.ImageURL != nil {
		t.Errorf("imageUrl should be null when not provided, got %v", *created.ImageURL)
	}
}

func TestCreateProductValidation(t *testing.T) {
	router := newProductRouter(newMockProductStore())

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing name", map[string]any{"price": 100}},
		{"missing price", map[string]any{"name": "Widget"}},
		{"negative price", map[string]any{"name": "Widget", "price": -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, router, "POST", "/api/products", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestCreateProductZeroPrice(t *testing.T) {
	router := newProductRouter(newMockProductStore())

	// Zero is a legal price; only absent or negative is rejected.
	rr := doJSON(t, router, "POST", "/api/products", map[string]any{
		"name":  "Freebie",
		"price": 0,
	})
	if rr.Code != http.StatusCreated {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusCreated)
	}
}

func TestUpdateProductPartial(t *testing.T) {
	s := newMockProductStore()
	router := newProductRouter(s)

	rr := doJSON(t, router, "POST", "/api/products", map[string]any{
		"name":     "Widget",
		"imageUrl": "/uploads/widget.jpg",
		"price":    500,
	})
	var created productResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	rr = doJSON(t, router, "PUT", "/api/products/1", map[string]any{"price": 750})
	if rr.Code != http.StatusOK {
		t.Fatalf("update status: got %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	got := s.products[created.ID]
	if got.Price != 750 {
		t.Errorf("price: got %d, want 750", got.Price)
	}
	if got.Name != "Widget" {
		t.Errorf("name should be untouched, got %s", got.Name)
	}
	if !got.ImageUrl.Valid || got.ImageUrl.String != "/uploads/widget.jpg" {
		t.Errorf("imageUrl should be untouched, got %+v", got.ImageUrl)
	}
}

func TestUpdateProductValidation(t *testing.T) {
	router := newProductRouter(newMockProductStore())

	cases := []struct {
		name string
		path string
		body map[string]any
	}{
		{"no recognized fields", "/api/products/1", map[string]any{}},
		{"empty name", "/api/products/1", map[string]any{"name": ""}},
		{"negative price", "/api/products/1", map[string]any{"price": -1}},
		{"bad id", "/api/products/abc", map[string]any{"price": 100}},
		{"unknown id", "/api/products/99", map[string]any{"price": 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, router, "PUT", tc.path, tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestDeleteProduct(t *testing.T) {
	router := newProductRouter(newMockProductStore())

	doJSON(t, router, "POST", "/api/products", map[string]any{"name": "Widget", "price": 500})

	rr := doJSON(t, router, "DELETE", "/api/products/1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	var resp successResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success {
		t.Error("expected success:true")
	}

	// Second delete is a no-op.
	rr = doJSON(t, router, "DELETE", "/api/products/1", nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Success {
		t.Error("expected success:false for an already-deleted product")
	}
}
