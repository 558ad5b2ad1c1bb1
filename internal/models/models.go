package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a storefront account. Staff users may use the back-office.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsStaff      bool      `db:"is_staff" json:"is_staff"`
	DateJoined   time.Time `db:"date_joined" json:"date_joined"`
}

// Category groups medicines in the catalog
type Category struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Image       string    `db:"image" json:"image,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Medicine is a purchasable catalog item
type Medicine struct {
	ID                   int64           `db:"id" json:"id"`
	Name                 string          `db:"name" json:"name"`
	Description          string          `db:"description" json:"description"`
	CategoryID           int64           `db:"category_id" json:"category_id"`
	Price                decimal.Decimal `db:"price" json:"price"`
	Stock                int             `db:"stock" json:"stock"`
	Image                string          `db:"image" json:"image,omitempty"`
	RequiresPrescription bool            `db:"requires_prescription" json:"requires_prescription"`
	Dosage               string          `db:"dosage" json:"dosage"`
	Manufacturer         string          `db:"manufacturer" json:"manufacturer"`
	Featured             bool            `db:"featured" json:"featured"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

func (m *Medicine) InStock() bool {
	return m.Stock > 0
}

// CartLine is one (user, medicine, quantity) record. Medicine is loaded
// alongside so totals always reflect the current price.
type CartLine struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	MedicineID int64     `db:"medicine_id" json:"medicine_id"`
	Quantity   int       `db:"quantity" json:"quantity"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
	Medicine   Medicine  `db:"medicine" json:"medicine"`
}

func (l *CartLine) Total() decimal.Decimal {
	return l.Medicine.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartTotal sums the line totals at the current medicine prices.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for i := range lines {
		total = total.Add(lines[i].Total())
	}
	return total
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderStatuses lists every valid status in lifecycle order.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var statusPercentages = map[string]int{
	OrderStatusPending:   25,
	OrderStatusConfirmed: 50,
	OrderStatusShipped:   75,
	OrderStatusDelivered: 100,
	OrderStatusCancelled: 0,
}

func IsValidOrderStatus(status string) bool {
	_, ok := statusPercentages[status]
	return ok
}

// Order is the immutable result of a checkout; only Status changes later.
type Order struct {
	ID              int64           `db:"id" json:"id"`
	UserID          int64           `db:"user_id" json:"user_id"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status          string          `db:"status" json:"status"`
	ShippingAddress string          `db:"shipping_address" json:"shipping_address"`
	Phone           string          `db:"phone" json:"phone"`
	Notes           string          `db:"notes" json:"notes"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// StatusPercentage is the tracking progress shown for the order.
func (o *Order) StatusPercentage() int {
	return statusPercentages[o.Status]
}

// OrderItem snapshots quantity and price at checkout time.
type OrderItem struct {
	ID           int64           `db:"id" json:"id"`
	OrderID      int64           `db:"order_id" json:"order_id"`
	MedicineID   int64           `db:"medicine_id" json:"medicine_id"`
	MedicineName string          `db:"medicine_name" json:"medicine_name"`
	Quantity     int             `db:"quantity" json:"quantity"`
	Price        decimal.Decimal `db:"price" json:"price"`
}

func (i *OrderItem) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// RefillReminder is a dated note, independent of the catalog.
type RefillReminder struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	MedicineName string    `db:"medicine_name" json:"medicine_name"`
	Dosage       string    `db:"dosage" json:"dosage"`
	ReminderDate time.Time `db:"reminder_date" json:"reminder_date"`
	Notes        string    `db:"notes" json:"notes"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// IsUpcoming reports whether the reminder date is today or later.
func (r *RefillReminder) IsUpcoming(today time.Time) bool {
	return r.DaysUntil(today) >= 0
}

// DaysUntil is the whole number of days from today to the reminder date;
// negative once the date has passed.
func (r *RefillReminder) DaysUntil(today time.Time) int {
	diff := CivilDate(r.ReminderDate).Sub(CivilDate(today))
	return int(diff.Hours() / 24)
}

// CivilDate drops the clock and zone of t, keeping its calendar date.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// OrderTimelineEntry records an order event for the tracking view.
type OrderTimelineEntry struct {
	ID         int64     `db:"id" json:"id"`
	OrderID    int64     `db:"order_id" json:"order_id"`
	EventID    string    `db:"event_id" json:"event_id"`
	EventType  string    `db:"event_type" json:"event_type"`
	Status     string    `db:"status" json:"status"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
}
