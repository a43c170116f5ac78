package store

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Product is a catalog row. Price is in minor currency units (agorot).
type Product struct {
	ID        int64
	Name      string
	ImageUrl  pgtype.Text
	Price     int64
	CreatedAt time.Time
}

// Order is an order row. OrderUid is the short public identifier; ID stays
// internal. Total is in minor currency units and always server-computed.
type Order struct {
	ID            int64
	OrderUid      string
	Status        string
	PaymentMethod string
	Total         int64
	CreatedAt     time.Time
}

// OrderItem is a snapshot of a product at purchase time. ProductID is nullable
// and carries no foreign key: deleting a product must never touch history.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID pgtype.Int8
	Name      string
	Price     int64
	Quantity  int32
}
