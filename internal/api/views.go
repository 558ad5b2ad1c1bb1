package api

import (
	"time"

	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/service"

	"github.com/shopspring/decimal"
)

// Money is always rendered with two decimals.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type medicineView struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	CategoryID           int64     `json:"category_id"`
	Price                string    `json:"price"`
	Stock                int       `json:"stock"`
	InStock              bool      `json:"in_stock"`
	Image                string    `json:"image,omitempty"`
	RequiresPrescription bool      `json:"requires_prescription"`
	Dosage               string    `json:"dosage"`
	Manufacturer         string    `json:"manufacturer"`
	Featured             bool      `json:"featured"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func newMedicineView(m *models.Medicine) medicineView {
	return medicineView{
		ID:                   m.ID,
		Name:                 m.Name,
		Description:          m.Description,
		CategoryID:           m.CategoryID,
		Price:                money(m.Price),
		Stock:                m.Stock,
		InStock:              m.InStock(),
		Image:                m.Image,
		RequiresPrescription: m.RequiresPrescription,
		Dosage:               m.Dosage,
		Manufacturer:         m.Manufacturer,
		Featured:             m.Featured,
		UpdatedAt:            m.UpdatedAt,
	}
}

func newMedicineViews(ms []models.Medicine) []medicineView {
	out := make([]medicineView, len(ms))
	for i := range ms {
		out[i] = newMedicineView(&ms[i])
	}
	return out
}

type cartLineView struct {
	ID         int64        `json:"id"`
	MedicineID int64        `json:"medicine_id"`
	Quantity   int          `json:"quantity"`
	Total      string       `json:"total"`
	Medicine   medicineView `json:"medicine"`
}

type cartView struct {
	Lines []cartLineView `json:"lines"`
	Count int            `json:"count"`
	Total string         `json:"total"`
}

func newCartLineView(l *models.CartLine) cartLineView {
	return cartLineView{
		ID:         l.ID,
		MedicineID: l.MedicineID,
		Quantity:   l.Quantity,
		Total:      money(l.Total()),
		Medicine:   newMedicineView(&l.Medicine),
	}
}

func newCartView(v *service.CartView) cartView {
	out := cartView{Lines: make([]cartLineView, len(v.Lines)), Total: money(v.Total)}
	for i := range v.Lines {
		out.Lines[i] = newCartLineView(&v.Lines[i])
		out.Count += v.Lines[i].Quantity
	}
	return out
}

type orderView struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	TotalAmount      string    `json:"total_amount"`
	Status           string    `json:"status"`
	StatusPercentage int       `json:"status_percentage"`
	ShippingAddress  string    `json:"shipping_address"`
	Phone            string    `json:"phone"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newOrderView(o *models.Order) orderView {
	return orderView{
		ID:               o.ID,
		UserID:           o.UserID,
		TotalAmount:      money(o.TotalAmount),
		Status:           o.Status,
		StatusPercentage: o.StatusPercentage(),
		ShippingAddress:  o.ShippingAddress,
		Phone:            o.Phone,
		Notes:            o.Notes,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func newOrderViews(orders []models.Order) []orderView {
	out := make([]orderView, len(orders))
	for i := range orders {
		out[i] = newOrderView(&orders[i])
	}
	return out
}

type orderItemView struct {
	ID           int64  `json:"id"`
	MedicineID   int64  `json:"medicine_id"`
	MedicineName string `json:"medicine_name"`
	Quantity     int    `json:"quantity"`
	Price        string `json:"price"`
	Total        string `json:"total"`
}

func newOrderItemViews(items []models.OrderItem) []orderItemView {
	out := make([]orderItemView, len(items))
	for i := range items {
		it := &items[i]
		out[i] = orderItemView{
			ID:           it.ID,
			MedicineID:   it.MedicineID,
			MedicineName: it.MedicineName,
			Quantity:     it.Quantity,
			Price:        money(it.Price),
			Total:        money(it.Total()),
		}
	}
	return out
}

type orderDetailView struct {
	Order    orderView                   `json:"order"`
	Items    []orderItemView             `json:"items"`
	Timeline []models.OrderTimelineEntry `json:"timeline"`
}

func newOrderDetailView(d *service.OrderDetail) orderDetailView {
	timeline := d.Timeline
	if timeline == nil {
		timeline = []models.OrderTimelineEntry{}
	}
	return orderDetailView{
		Order:    newOrderView(d.Order),
		Items:    newOrderItemViews(d.Items),
		Timeline: timeline,
	}
}

type reminderView struct {
	ID           int64  `json:"id"`
	MedicineName string `json:"medicine_name"`
	Dosage       string `json:"dosage"`
	ReminderDate string `json:"reminder_date"`
	Notes        string `json:"notes"`
	IsActive     bool   `json:"is_active"`
	IsUpcoming   bool   `json:"is_upcoming"`
	DaysUntil    int    `json:"days_until"`
}

func newReminderView(r *models.RefillReminder, today time.Time) reminderView {
	return reminderView{
		ID:           r.ID,
		MedicineName: r.MedicineName,
		Dosage:       r.Dosage,
		ReminderDate: r.ReminderDate.Format(service.ReminderDateLayout),
		Notes:        r.Notes,
		IsActive:     r.IsActive,
		IsUpcoming:   r.IsUpcoming(today),
		DaysUntil:    r.DaysUntil(today),
	}
}

func newReminderViews(rs []models.RefillReminder, today time.Time) []reminderView {
	out := make([]reminderView, len(rs))
	for i := range rs {
		out[i] = newReminderView(&rs[i], today)
	}
	return out
}

type dashboardView struct {
	TotalUsers     int            `json:"total_users"`
	TotalOrders    int            `json:"total_orders"`
	TotalMedicines int            `json:"total_medicines"`
	TotalSales     string         `json:"total_sales"`
	RecentOrders   []orderView    `json:"recent_orders"`
	LowStock       []medicineView `json:"low_stock_medicines"`
}

func newDashboardView(d *service.Dashboard) dashboardView {
	return dashboardView{
		TotalUsers:     d.TotalUsers,
		TotalOrders:    d.TotalOrders,
		TotalMedicines: d.TotalMedicines,
		TotalSales:     money(d.TotalSales),
		RecentOrders:   newOrderViews(d.RecentOrders),
		LowStock:       newMedicineViews(d.LowStock),
	}
}
