package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/agora-shop/api/internal/service"
	"github.com/agora-shop/api/internal/store"
	"github.com/agora-shop/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

// OrderServicer defines the service methods needed by the checkout endpoint.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderStore defines the database methods needed by order read/update
// handlers. Satisfied by *store.Queries.
type OrderStore interface {
	ListOrders(ctx context.Context, includeArchived bool) ([]store.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]store.OrderItem, error)
	GetOrderByUid(ctx context.Context, orderUid string) (store.Order, error)
	CompleteOrder(ctx context.Context, orderUid string) (int64, error)
	ArchiveOrder(ctx context.Context, orderUid string) (int64, error)
}

// EventBroadcaster pushes order events to connected admin consoles.
// Satisfied by *ws.Hub.
type EventBroadcaster interface {
	Broadcast(event ws.Event)
}

// OrderHandler handles checkout and admin order management.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	feed  EventBroadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, feed EventBroadcaster) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, feed: feed}
}

// --- Request / Response types ---

type createOrderRequest struct {
	PaymentMethod string                   `json:"paymentMethod"`
	Items         []createOrderItemRequest `json:"items"`
}

// Price and Quantity are pointers so a missing field reads as malformed
// rather than as zero. Client-sent totals have no field to land in.
type createOrderItemRequest struct {
	ProductID *int64 `json:"productId"`
	Name      string `json:"name"`
	Price     *int64 `json:"price"`
	Quantity  *int32 `json:"quantity"`
}

type orderResponse struct {
	ID            int64               `json:"id"`
	OrderUid      string              `json:"orderUid"`
	CreatedAt     time.Time           `json:"createdAt"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"paymentMethod"`
	Total         int64               `json:"total"`
	Items         []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ProductID *int64 `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int32  `json:"quantity"`
}

type statusEventPayload struct {
	OrderUid string `json:"orderUid"`
	Status   string `json:"status"`
}

func toOrderResponse(o store.Order, items []store.OrderItem) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		OrderUid:      o.OrderUid,
		CreatedAt:     o.CreatedAt,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total,
		Items:         make([]orderItemResponse, len(items)),
	}
	for i, it := range items {
		resp.Items[i] = orderItemResponse{
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		}
		if it.ProductID.Valid {
			id := it.ProductID.Int64
			resp.Items[i].ProductID = &id
		}
	}
	return resp
}

// --- Handlers ---

// Create handles POST /api/orders — the public checkout. The total is
// computed server-side; nothing the client sends is trusted as money beyond
// the per-item snapshot it is buying at.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}

	svcItems := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		if item.Name == "" || item.Price == nil || item.Quantity == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item"})
			return
		}
		svcItems[i] = service.CreateOrderItemRequest{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     *item.Price,
			Quantity:  *item.Quantity,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		PaymentMethod: req.PaymentMethod,
		Items:         svcItems,
	})
	if err != nil {
		if errors.Is(err, service.ErrOrderUidConflict) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order uid conflict, please retry"})
			return
		}
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(result.Order, result.Items)
	h.broadcast("order.created", resp)

	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /api/orders?includeArchived=bool (admin).
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("includeArchived") == "true"

	orders, err := h.store.ListOrders(r.Context(), includeArchived)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		items, err := h.store.ListOrderItemsByOrder(r.Context(), o.ID)
		if err != nil {
			log.Printf("ERROR: list order items: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp[i] = toOrderResponse(o, items)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/orders/{orderUid} (admin).
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderUid := chi.URLParam(r, "orderUid")

	order, err := h.store.GetOrderByUid(r.Context(), orderUid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), order.ID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order, items))
}

// Complete handles POST /api/orders/{orderUid}/complete (admin).
// Only pending orders move; anything else is a safe no-op, success:false.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.store.CompleteOrder, "completed")
}

// Archive handles POST /api/orders/{orderUid}/archive (admin).
// Archiving is terminal; an already-archived order reports success:false.
func (h *OrderHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.store.ArchiveOrder, "archived")
}

// --- Helpers ---

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (int64, error), status string) {
	orderUid := chi.URLParam(r, "orderUid")

	rows, err := op(r.Context(), orderUid)
	if err != nil {
		log.Printf("ERROR: order %s → %s: %v", orderUid, status, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if rows > 0 {
		h.broadcast("order.updated", statusEventPayload{OrderUid: orderUid, Status: status})
	}

	writeJSON(w, http.StatusOK, successResponse{Success: rows > 0})
}

func (h *OrderHandler) broadcast(eventType string, payload interface{}) {
	event, err := ws.NewEvent(eventType, payload)
	if err != nil {
		log.Printf("ERROR: marshal %s event: %v", eventType, err)
		return
	}
	h.feed.Broadcast(event)
}

func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidPaymentMethod) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrMissingItemName) ||
		errors.Is(err, service.ErrNegativeItemPrice)
}
