package store

import (
	"context"
	"errors"
	"time"

	"pharmacy-storefront/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a row does not exist (or is not visible to the caller).
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on unique or foreign key violations.
	ErrConflict = errors.New("conflict")
)

// MedicineFilter narrows ListMedicines. Zero values disable a condition.
type MedicineFilter struct {
	CategoryID   int64
	FeaturedOnly bool
	Query        string
	ExcludeID    int64
	StockBelow   int
	Limit        int
}

// OrderFilter narrows ListOrders. Results are newest first.
type OrderFilter struct {
	UserID int64
	Status string
	Limit  int
}

// ReminderFilter narrows ListReminders. Results are ordered by reminder date.
type ReminderFilter struct {
	UserID     int64
	ActiveOnly bool
	From       time.Time
}

type CatalogRepository interface {
	ListCategories(ctx context.Context, limit int) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	ListMedicines(ctx context.Context, filter MedicineFilter) ([]models.Medicine, error)
	GetMedicine(ctx context.Context, id int64) (*models.Medicine, error)
	FindMedicineByName(ctx context.Context, name string) (*models.Medicine, error)
	CreateMedicine(ctx context.Context, medicine *models.Medicine) error
	UpdateMedicine(ctx context.Context, medicine *models.Medicine) error
	DeleteMedicine(ctx context.Context, id int64) error
	CountMedicines(ctx context.Context) (int, error)
}

type CartRepository interface {
	ListCartLines(ctx context.Context, userID int64) ([]models.CartLine, error)
	GetCartLine(ctx context.Context, userID, lineID int64) (*models.CartLine, error)
	FindCartLine(ctx context.Context, userID, medicineID int64) (*models.CartLine, error)
	CreateCartLine(ctx context.Context, line *models.CartLine) error
	UpdateCartLineQuantity(ctx context.Context, lineID int64, quantity int) error
	DeleteCartLine(ctx context.Context, userID, lineID int64) error
}

type OrderRepository interface {
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) error
	CountOrders(ctx context.Context) (int, error)
	SumOrderTotals(ctx context.Context, status string) (decimal.Decimal, error)
}

type ReminderRepository interface {
	ListReminders(ctx context.Context, filter ReminderFilter) ([]models.RefillReminder, error)
	GetReminder(ctx context.Context, userID, id int64) (*models.RefillReminder, error)
	CreateReminder(ctx context.Context, reminder *models.RefillReminder) error
	UpdateReminder(ctx context.Context, reminder *models.RefillReminder) error
	DeleteReminder(ctx context.Context, userID, id int64) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int, error)
}

type TimelineRepository interface {
	// AppendTimelineEntry returns false when the event was already recorded.
	AppendTimelineEntry(ctx context.Context, entry *models.OrderTimelineEntry) (bool, error)
	ListTimeline(ctx context.Context, orderID int64) ([]models.OrderTimelineEntry, error)
}

// Tx is the unit of work used by checkout. Rows returned by LockMedicines
// stay locked until the surrounding InTx call returns.
type Tx interface {
	ListCartLines(ctx context.Context, userID int64) ([]models.CartLine, error)
	LockMedicines(ctx context.Context, ids []int64) (map[int64]models.Medicine, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItem(ctx context.Context, item *models.OrderItem) error
	DecrementStock(ctx context.Context, medicineID int64, quantity int) error
	ClearCart(ctx context.Context, userID int64) error
}

// Repository is everything the services need from persistence.
type Repository interface {
	CatalogRepository
	CartRepository
	OrderRepository
	ReminderRepository
	UserRepository
	TimelineRepository

	// InTx runs fn atomically: its effects are committed only if fn returns nil.
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}
