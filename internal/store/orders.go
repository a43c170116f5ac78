package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `
INSERT INTO orders (order_uid, payment_method, total)
VALUES ($1, $2, $3)
RETURNING id, order_uid, status, payment_method, total, created_at
`

type CreateOrderParams struct {
	OrderUid      string
	PaymentMethod string
	Total         int64
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	var o Order
	err := q.db.QueryRow(ctx, createOrder, arg.OrderUid, arg.PaymentMethod, arg.Total).
		Scan(&o.ID, &o.OrderUid, &o.Status, &o.PaymentMethod, &o.Total, &o.CreatedAt)
	return o, err
}

const createOrderItem = `
INSERT INTO order_items (order_id, product_id, name, price, quantity)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, product_id, name, price, quantity
`

type CreateOrderItemParams struct {
	OrderID   int64
	ProductID pgtype.Int8
	Name      string
	Price     int64
	Quantity  int32
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	var it OrderItem
	err := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.ProductID, arg.Name, arg.Price, arg.Quantity).
		Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity)
	return it, err
}

const listOrders = `
SELECT id, order_uid, status, payment_method, total, created_at
FROM orders
WHERE $1::boolean OR status <> 'archived'
ORDER BY id DESC
`

// ListOrders returns orders most recent first, hiding archived ones unless
// includeArchived is set.
func (q *Queries) ListOrders(ctx context.Context, includeArchived bool) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders, includeArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.OrderUid, &o.Status, &o.PaymentMethod, &o.Total, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listOrderItemsByOrder = `
SELECT id, order_id, product_id, name, price, quantity
FROM order_items
WHERE order_id = $1
ORDER BY id
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const getOrderByUid = `
SELECT id, order_uid, status, payment_method, total, created_at
FROM orders
WHERE order_uid = $1
`

func (q *Queries) GetOrderByUid(ctx context.Context, orderUid string) (Order, error) {
	var o Order
	err := q.db.QueryRow(ctx, getOrderByUid, orderUid).
		Scan(&o.ID, &o.OrderUid, &o.Status, &o.PaymentMethod, &o.Total, &o.CreatedAt)
	return o, err
}

const completeOrder = `
UPDATE orders
SET status = 'completed'
WHERE order_uid = $1 AND status = 'pending'
`

// CompleteOrder moves a pending order to completed. The status predicate makes
// the transition a compare-and-set: 0 rows means unknown UID or not pending.
func (q *Queries) CompleteOrder(ctx context.Context, orderUid string) (int64, error) {
	tag, err := q.db.Exec(ctx, completeOrder, orderUid)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const archiveOrder = `
UPDATE orders
SET status = 'archived'
WHERE order_uid = $1 AND status <> 'archived'
`

// ArchiveOrder moves any non-archived order to archived.
func (q *Queries) ArchiveOrder(ctx context.Context, orderUid string) (int64, error) {
	tag, err := q.db.Exec(ctx, archiveOrder, orderUid)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
