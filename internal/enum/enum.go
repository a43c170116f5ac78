package enum

// ── State machines (CHECK constrained in DB) ──
//
// Transitions are monotonic: pending → completed, pending → archived,
// completed → archived. Nothing leaves archived.

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusArchived  = "archived"
)

const (
	PaymentMethodCash   = "cash"
	PaymentMethodPaypal = "paypal"
)

// ── Roles ──

const (
	RoleAdmin = "admin"
)
