package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/agora-shop/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ProductStore defines the database methods needed by product handlers.
// Satisfied by *store.Queries; narrow interface for testability.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]store.Product, error)
	CreateProduct(ctx context.Context, arg store.CreateProductParams) (store.Product, error)
	UpdateProduct(ctx context.Context, arg store.UpdateProductParams) (int64, error)
	DeleteProduct(ctx context.Context, id int64) (int64, error)
}

// ProductHandler handles catalog endpoints. List is public; mutations are
// mounted behind the admin middleware by the router.
type ProductHandler struct {
	store ProductStore
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store ProductStore) *ProductHandler {
	return &ProductHandler{store: store}
}

// --- Request / Response types ---

// Pointer fields distinguish "absent" from zero values: Create requires price
// to be present, Update treats absent fields as "leave unchanged".
type createProductRequest struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
	Price    *int64 `json:"price"`
}

type updateProductRequest struct {
	Name     *string `json:"name"`
	ImageURL *string `json:"imageUrl"`
	Price    *int64  `json:"price"`
}

type productResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"imageUrl"`
	Price    int64   `json:"price"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func toProductResponse(p store.Product) productResponse {
	resp := productResponse{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
	}
	if p.ImageUrl.Valid {
		resp.ImageURL = &p.ImageUrl.String
	}
	return resp
}

// --- Handlers ---

// List returns the catalog, most recently created first. Public.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new product to the catalog.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	if req.Price == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price is required"})
		return
	}
	if *req.Price < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be >= 0"})
		return
	}

	imageURL := pgtype.Text{}
	if req.ImageURL != "" {
		imageURL = pgtype.Text{String: req.ImageURL, Valid: true}
	}

	product, err := h.store.CreateProduct(r.Context(), store.CreateProductParams{
		Name:     req.Name,
		ImageUrl: imageURL,
		Price:    *req.Price,
	})
	if err != nil {
		log.Printf("ERROR: create product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

// Update applies a partial update. A body with none of the recognized fields
// is rejected, and an unknown id reports the same way the original API did:
// 400 with no row touched.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == nil && req.ImageURL == nil && req.Price == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no recognized fields"})
		return
	}

	if req.Name != nil && *req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name must not be empty"})
		return
	}
	if req.Price != nil && *req.Price < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be >= 0"})
		return
	}

	params := store.UpdateProductParams{ID: id}
	if req.Name != nil {
		params.Name = pgtype.Text{String: *req.Name, Valid: true}
	}
	if req.ImageURL != nil {
		params.ImageUrl = pgtype.Text{String: *req.ImageURL, Valid: true}
	}
	if req.Price != nil {
		params.Price = pgtype.Int8{Int64: *req.Price, Valid: true}
	}

	rows, err := h.store.UpdateProduct(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: update product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if rows == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no changes or not found"})
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Delete removes a product from the catalog. Historical order items keep
// their snapshots. An unknown id is a no-op reported as success:false.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	rows, err := h.store.DeleteProduct(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: delete product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: rows > 0})
}
