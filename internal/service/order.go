package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/agora-shop/api/internal/enum"
	"github.com/agora-shop/api/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const maxOrderUidRetries = 3

// orderUidLength and orderUidAlphabet shape the public order identifier:
// upper-case, URL-safe, no 0/O/1/I/L lookalikes, ~49 bits of entropy. The
// orders_order_uid_key constraint stays the authority on uniqueness.
const (
	orderUidLength   = 10
	orderUidAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"
)

// Errors returned by the order service. All of these map to ValidationError
// at the HTTP layer except ErrOrderUidConflict.
var (
	ErrEmptyItems           = errors.New("items are required")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrMissingItemName      = errors.New("item name is required")
	ErrNegativeItemPrice    = errors.New("item price must be >= 0")
	ErrOrderUidConflict     = errors.New("order uid conflict")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *store.Queries (and its WithTx variant).
type OrderStore interface {
	CreateOrder(ctx context.Context, arg store.CreateOrderParams) (store.Order, error)
	CreateOrderItem(ctx context.Context, arg store.CreateOrderItemParams) (store.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db store.DBTX) OrderStore

// CreateOrderRequest is the validated input for a checkout. Client-supplied
// totals are not part of the request by construction.
type CreateOrderRequest struct {
	PaymentMethod string
	Items         []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single cart line. ProductID is optional; name
// and price are snapshotted as given so later catalog edits cannot rewrite
// history.
type CreateOrderItemRequest struct {
	ProductID *int64
	Name      string
	Price     int64
	Quantity  int32
}

// CreateOrderResult is the created order with its items.
type CreateOrderResult struct {
	Order store.Order
	Items []store.OrderItem
}

// OrderService handles checkout business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// CreateOrder validates the cart, computes the total server-side, and writes
// the order with all items in one transaction. Retries with a fresh UID up to
// maxOrderUidRetries times on order_uid unique constraint violations.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if err := validatePaymentMethod(req.PaymentMethod); err != nil {
		return nil, err
	}

	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	total := int64(0)
	for i, item := range req.Items {
		if item.Name == "" {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrMissingItemName)
		}
		if item.Price < 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrNegativeItemPrice)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		total += item.Price * int64(item.Quantity)
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderUidRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req, total)
		if err == nil {
			return result, nil
		}
		if isOrderUidConflict(err) {
			lastErr = fmt.Errorf("%w: %w", ErrOrderUidConflict, err)
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// createOrderTx runs one attempt: new UID, order row, item rows, commit.
// Any failure rolls the whole attempt back, leaving no partial order.
func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest, total int64) (*CreateOrderResult, error) {
	orderUid, err := generateOrderUid()
	if err != nil {
		return nil, fmt.Errorf("generate order uid: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	q := s.newStore(tx)

	order, err := q.CreateOrder(ctx, store.CreateOrderParams{
		OrderUid:      orderUid,
		PaymentMethod: req.PaymentMethod,
		Total:         total,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]store.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID := pgtype.Int8{}
		if item.ProductID != nil {
			productID = pgtype.Int8{Int64: *item.ProductID, Valid: true}
		}
		it, err := q.CreateOrderItem(ctx, store.CreateOrderItemParams{
			OrderID:   order.ID,
			ProductID: productID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, it)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: items}, nil
}

// isOrderUidConflict checks if the error is a unique constraint violation on
// the order UID (pgconn error code 23505).
func isOrderUidConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_uid_key"
	}
	return false
}

func validatePaymentMethod(s string) error {
	switch s {
	case enum.PaymentMethodCash, enum.PaymentMethodPaypal:
		return nil
	}
	return ErrInvalidPaymentMethod
}

func generateOrderUid() (string, error) {
	buf := make([]byte, orderUidLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = orderUidAlphabet[int(b)%len(orderUidAlphabet)]
	}
	return string(buf), nil
}
