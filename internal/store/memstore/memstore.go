// Package memstore is an in-memory store.Repository. Transactions run against
// a copy of the state which replaces the live state only when the callback
// succeeds, so a failed checkout leaves nothing behind.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/store"

	"github.com/shopspring/decimal"
)

type state struct {
	nextID     int64
	users      map[int64]models.User
	categories map[int64]models.Category
	medicines  map[int64]models.Medicine
	cartLines  map[int64]models.CartLine
	orders     map[int64]models.Order
	orderItems map[int64]models.OrderItem
	reminders  map[int64]models.RefillReminder
	timeline   map[int64]models.OrderTimelineEntry
}

func newState() state {
	return state{
		users:      map[int64]models.User{},
		categories: map[int64]models.Category{},
		medicines:  map[int64]models.Medicine{},
		cartLines:  map[int64]models.CartLine{},
		orders:     map[int64]models.Order{},
		orderItems: map[int64]models.OrderItem{},
		reminders:  map[int64]models.RefillReminder{},
		timeline:   map[int64]models.OrderTimelineEntry{},
	}
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s state) clone() state {
	return state{
		nextID:     s.nextID,
		users:      cloneMap(s.users),
		categories: cloneMap(s.categories),
		medicines:  cloneMap(s.medicines),
		cartLines:  cloneMap(s.cartLines),
		orders:     cloneMap(s.orders),
		orderItems: cloneMap(s.orderItems),
		reminders:  cloneMap(s.reminders),
		timeline:   cloneMap(s.timeline),
	}
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// Store keeps every table in maps guarded by one mutex.
type Store struct {
	mu    sync.Mutex
	state state
	now   func() time.Time
}

var _ store.Repository = (*Store)(nil)

// New creates an empty in-memory store
func New() *Store {
	return &Store{state: newState(), now: time.Now}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// InTx holds the store lock for the whole callback, which gives the same
// guarantees as row locks taken by the database implementation.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	tx := &memTx{state: &work, now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = work
	return nil
}

func sortedValues[V any](in map[int64]V, less func(a, b V) bool) []V {
	out := make([]V, 0, len(in))
	for _, v := range in {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func limit[V any](in []V, n int) []V {
	if n > 0 && len(in) > n {
		return in[:n]
	}
	return in
}

// ---- catalog ----

func (s *Store) ListCategories(ctx context.Context, n int) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := sortedValues(s.state.categories, func(a, b models.Category) bool {
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return limit(out, n), nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.state.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.state.id()
	c.CreatedAt = s.now()
	s.state.categories[c.ID] = *c
	return nil
}

// DeleteCategory cascades to the category's medicines.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.categories[id]; !ok {
		return store.ErrNotFound
	}

	var doomed []int64
	for mid, m := range s.state.medicines {
		if m.CategoryID == id {
			if s.state.isOrdered(mid) {
				return store.ErrConflict
			}
			doomed = append(doomed, mid)
		}
	}
	for _, mid := range doomed {
		s.state.deleteMedicine(mid)
	}
	delete(s.state.categories, id)
	return nil
}

func (s *state) isOrdered(medicineID int64) bool {
	for _, it := range s.orderItems {
		if it.MedicineID == medicineID {
			return true
		}
	}
	return false
}

func (s *state) deleteMedicine(id int64) {
	for lid, l := range s.cartLines {
		if l.MedicineID == id {
			delete(s.cartLines, lid)
		}
	}
	delete(s.medicines, id)
}

func (s *Store) ListMedicines(ctx context.Context, f store.MedicineFilter) ([]models.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	matched := map[int64]models.Medicine{}
	for id, m := range s.state.medicines {
		if f.CategoryID > 0 && m.CategoryID != f.CategoryID {
			continue
		}
		if f.FeaturedOnly && !m.Featured {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(m.Name), q) &&
			!strings.Contains(strings.ToLower(m.Description), q) {
			continue
		}
		if f.ExcludeID > 0 && id == f.ExcludeID {
			continue
		}
		if f.StockBelow > 0 && m.Stock >= f.StockBelow {
			continue
		}
		matched[id] = m
	}

	out := sortedValues(matched, func(a, b models.Medicine) bool {
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return limit(out, f.Limit), nil
}

func (s *Store) GetMedicine(ctx context.Context, id int64) (*models.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.state.medicines[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (s *Store) FindMedicineByName(ctx context.Context, name string) (*models.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found *models.Medicine
	for _, m := range s.state.medicines {
		m := m
		if m.Name == name && (found == nil || m.ID < found.ID) {
			found = &m
		}
	}
	if found == nil {
		return nil, store.ErrNotFound
	}
	return found, nil
}

func (s *Store) CreateMedicine(ctx context.Context, m *models.Medicine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.categories[m.CategoryID]; !ok {
		return store.ErrConflict
	}
	m.ID = s.state.id()
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt
	s.state.medicines[m.ID] = *m
	return nil
}

func (s *Store) UpdateMedicine(ctx context.Context, m *models.Medicine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.state.medicines[m.ID]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := s.state.categories[m.CategoryID]; !ok {
		return store.ErrConflict
	}
	m.CreatedAt = prev.CreatedAt
	m.UpdatedAt = s.now()
	s.state.medicines[m.ID] = *m
	return nil
}

func (s *Store) DeleteMedicine(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.medicines[id]; !ok {
		return store.ErrNotFound
	}
	if s.state.isOrdered(id) {
		return store.ErrConflict
	}
	s.state.deleteMedicine(id)
	return nil
}

func (s *Store) CountMedicines(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.medicines), nil
}

// ---- cart ----

func (s *state) cartLinesFor(userID int64) []models.CartLine {
	owned := map[int64]models.CartLine{}
	for id, l := range s.cartLines {
		if l.UserID == userID {
			l.Medicine = s.medicines[l.MedicineID]
			owned[id] = l
		}
	}
	return sortedValues(owned, func(a, b models.CartLine) bool { return a.ID < b.ID })
}

func (s *Store) ListCartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.cartLinesFor(userID), nil
}

func (s *Store) GetCartLine(ctx context.Context, userID, lineID int64) (*models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.state.cartLines[lineID]
	if !ok || l.UserID != userID {
		return nil, store.ErrNotFound
	}
	l.Medicine = s.state.medicines[l.MedicineID]
	return &l, nil
}

func (s *Store) FindCartLine(ctx context.Context, userID, medicineID int64) (*models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.state.cartLines {
		if l.UserID == userID && l.MedicineID == medicineID {
			l.Medicine = s.state.medicines[l.MedicineID]
			return &l, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateCartLine(ctx context.Context, line *models.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.medicines[line.MedicineID]; !ok {
		return store.ErrConflict
	}
	for _, l := range s.state.cartLines {
		if l.UserID == line.UserID && l.MedicineID == line.MedicineID {
			return store.ErrConflict
		}
	}
	line.ID = s.state.id()
	line.CreatedAt = s.now()
	line.UpdatedAt = line.CreatedAt
	stored := *line
	stored.Medicine = models.Medicine{}
	s.state.cartLines[line.ID] = stored
	return nil
}

func (s *Store) UpdateCartLineQuantity(ctx context.Context, lineID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.state.cartLines[lineID]
	if !ok {
		return store.ErrNotFound
	}
	l.Quantity = quantity
	l.UpdatedAt = s.now()
	s.state.cartLines[lineID] = l
	return nil
}

func (s *Store) DeleteCartLine(ctx context.Context, userID, lineID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.state.cartLines[lineID]
	if !ok || l.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.state.cartLines, lineID)
	return nil
}

// ---- orders ----

func (s *Store) ListOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := map[int64]models.Order{}
	for id, o := range s.state.orders {
		if f.UserID > 0 && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		matched[id] = o
	}
	out := sortedValues(matched, func(a, b models.Order) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return limit(out, f.Limit), nil
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.state.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (s *Store) ListOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := map[int64]models.OrderItem{}
	for id, it := range s.state.orderItems {
		if it.OrderID == orderID {
			it.MedicineName = s.state.medicines[it.MedicineID].Name
			matched[id] = it
		}
	}
	return sortedValues(matched, func(a, b models.OrderItem) bool { return a.ID < b.ID }), nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.state.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = s.now()
	s.state.orders[id] = o
	return nil
}

func (s *Store) CountOrders(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.orders), nil
}

func (s *Store) SumOrderTotals(ctx context.Context, status string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := decimal.Zero
	for _, o := range s.state.orders {
		if o.Status == status {
			sum = sum.Add(o.TotalAmount)
		}
	}
	return sum, nil
}

// ---- reminders ----

func (s *Store) ListReminders(ctx context.Context, f store.ReminderFilter) ([]models.RefillReminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := models.CivilDate(f.From)
	matched := map[int64]models.RefillReminder{}
	for id, r := range s.state.reminders {
		if f.UserID > 0 && r.UserID != f.UserID {
			continue
		}
		if f.ActiveOnly && !r.IsActive {
			continue
		}
		if !f.From.IsZero() && r.ReminderDate.Before(from) {
			continue
		}
		matched[id] = r
	}
	return sortedValues(matched, func(a, b models.RefillReminder) bool {
		if !a.ReminderDate.Equal(b.ReminderDate) {
			return a.ReminderDate.Before(b.ReminderDate)
		}
		return a.ID < b.ID
	}), nil
}

func (s *Store) GetReminder(ctx context.Context, userID, id int64) (*models.RefillReminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.state.reminders[id]
	if !ok || r.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *Store) CreateReminder(ctx context.Context, r *models.RefillReminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.state.id()
	r.ReminderDate = models.CivilDate(r.ReminderDate)
	r.CreatedAt = s.now()
	s.state.reminders[r.ID] = *r
	return nil
}

func (s *Store) UpdateReminder(ctx context.Context, r *models.RefillReminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.state.reminders[r.ID]
	if !ok || prev.UserID != r.UserID {
		return store.ErrNotFound
	}
	r.ReminderDate = models.CivilDate(r.ReminderDate)
	r.CreatedAt = prev.CreatedAt
	s.state.reminders[r.ID] = *r
	return nil
}

func (s *Store) DeleteReminder(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.state.reminders[id]
	if !ok || r.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.state.reminders, id)
	return nil
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.state.users {
		if existing.Username == u.Username {
			return store.ErrConflict
		}
	}
	u.ID = s.state.id()
	u.DateJoined = s.now()
	s.state.users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.state.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.state.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortedValues(s.state.users, func(a, b models.User) bool {
		if !a.DateJoined.Equal(b.DateJoined) {
			return a.DateJoined.After(b.DateJoined)
		}
		return a.ID > b.ID
	}), nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.users), nil
}

// ---- timeline ----

func (s *Store) AppendTimelineEntry(ctx context.Context, e *models.OrderTimelineEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.state.timeline {
		if existing.EventID == e.EventID {
			return false, nil
		}
	}
	if _, ok := s.state.orders[e.OrderID]; !ok {
		return false, store.ErrConflict
	}
	e.ID = s.state.id()
	s.state.timeline[e.ID] = *e
	return true, nil
}

func (s *Store) ListTimeline(ctx context.Context, orderID int64) ([]models.OrderTimelineEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := map[int64]models.OrderTimelineEntry{}
	for id, e := range s.state.timeline {
		if e.OrderID == orderID {
			matched[id] = e
		}
	}
	return sortedValues(matched, func(a, b models.OrderTimelineEntry) bool {
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.Before(b.OccurredAt)
		}
		return a.ID < b.ID
	}), nil
}
