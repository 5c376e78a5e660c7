// Package memstore keeps every collection in process memory. It mirrors the Mongo
// store's unique indexes and ordering and is used by tests and local runs.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/models"
	"storefront-backend/internal/store"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time
	seq int

	users     []userRow
	products  []productRow
	inquiries []inquiryRow
}

type userRow struct {
	seq int
	u   models.User
}

type productRow struct {
	seq int
	p   models.Product
}

type inquiryRow struct {
	seq int
	q   models.Inquiry
}

func New() *Store {
	return &Store{now: time.Now}
}

func (s *Store) Users() store.Users         { return (*users)(s) }
func (s *Store) Products() store.Products   { return (*products)(s) }
func (s *Store) Inquiries() store.Inquiries { return (*inquiries)(s) }

func (s *Store) next() int {
	s.seq++
	return s.seq
}

// --- users ---

type users Store

func (r *users) Create(_ context.Context, u *models.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.users {
		if row.u.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	now := s.now()
	u.ID = primitive.NewObjectID()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Cart == nil {
		u.Cart = []models.CartItem{}
	}
	s.users = append(s.users, userRow{seq: s.next(), u: copyUser(*u)})
	return nil
}

func (r *users) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return models.User{}, store.ErrNotFound
	}
	return copyUser(s.users[i].u), nil
}

func (r *users) GetByEmail(_ context.Context, email string) (models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(func(u models.User) bool { return u.Email == email })
	if i < 0 {
		return models.User{}, store.ErrNotFound
	}
	return copyUser(s.users[i].u), nil
}

func (r *users) List(_ context.Context) ([]models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	rows := append([]userRow(nil), s.users...)
	s.mu.Unlock()

	sort.SliceStable(rows, func(i, j int) bool {
		return newer(rows[i].u.CreatedAt, rows[i].seq, rows[j].u.CreatedAt, rows[j].seq)
	})
	out := make([]models.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, copyUser(row.u))
	}
	return out, nil
}

func (r *users) Update(_ context.Context, id primitive.ObjectID, upd store.UserUpdate) (models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return models.User{}, store.ErrNotFound
	}
	u := &s.users[i].u
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.IsActive != nil {
		active := *upd.IsActive
		u.IsActive = &active
	}
	u.UpdatedAt = s.now()
	return copyUser(*u), nil
}

func (r *users) SetCart(_ context.Context, id primitive.ObjectID, items []models.CartItem) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}
	s.users[i].u.Cart = append([]models.CartItem{}, items...)
	s.users[i].u.UpdatedAt = s.now()
	return nil
}

func (r *users) SetRoleByEmail(_ context.Context, email, role string) (models.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(func(u models.User) bool { return u.Email == email })
	if i < 0 {
		return models.User{}, store.ErrNotFound
	}
	s.users[i].u.Role = role
	s.users[i].u.UpdatedAt = s.now()
	return copyUser(s.users[i].u), nil
}

func (r *users) Delete(_ context.Context, id primitive.ObjectID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return store.ErrNotFound
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	return nil
}

func (s *Store) userIndex(match func(models.User) bool) int {
	for i, row := range s.users {
		if match(row.u) {
			return i
		}
	}
	return -1
}

func copyUser(u models.User) models.User {
	if u.Cart != nil {
		u.Cart = append([]models.CartItem{}, u.Cart...)
	}
	if u.IsActive != nil {
		active := *u.IsActive
		u.IsActive = &active
	}
	return u
}

// --- products ---

type products Store

func (r *products) List(_ context.Context) ([]models.Product, error) {
	return r.filter(func(models.Product) bool { return true }), nil
}

func (r *products) ListByCategory(_ context.Context, category string) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool { return p.ProductCategory == category }), nil
}

func (r *products) filter(match func(models.Product) bool) []models.Product {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Product{}
	for _, row := range s.products {
		if match(row.p) {
			out = append(out, row.p)
		}
	}
	return out
}

func (r *products) Get(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.productIndex(id); i >= 0 {
		return s.products[i].p, nil
	}
	return models.Product{}, store.ErrNotFound
}

func (r *products) Create(_ context.Context, p *models.Product) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.productIDTaken(p.ProductID, primitive.NilObjectID) {
		return store.ErrDuplicate
	}
	now := s.now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = now, now
	s.products = append(s.products, productRow{seq: s.next(), p: *p})
	return nil
}

func (r *products) Replace(_ context.Context, p models.Product) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(p.ID)
	if i < 0 {
		return store.ErrNotFound
	}
	if s.productIDTaken(p.ProductID, p.ID) {
		return store.ErrDuplicate
	}
	s.products[i].p = p
	return nil
}

func (r *products) Delete(_ context.Context, id primitive.ObjectID) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return nil
}

func (r *products) ReplaceAll(_ context.Context, ps []models.Product) (int, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = nil
	now := s.now()
	for _, p := range ps {
		if s.productIDTaken(p.ProductID, primitive.NilObjectID) {
			return len(s.products), store.ErrDuplicate
		}
		p.ID = primitive.NewObjectID()
		p.CreatedAt, p.UpdatedAt = now, now
		s.products = append(s.products, productRow{seq: s.next(), p: p})
	}
	return len(s.products), nil
}

func (s *Store) productIndex(id primitive.ObjectID) int {
	for i, row := range s.products {
		if row.p.ID == id {
			return i
		}
	}
	return -1
}

// productIDTaken mirrors the partial unique index: empty business ids never collide.
func (s *Store) productIDTaken(productID string, except primitive.ObjectID) bool {
	if productID == "" {
		return false
	}
	for _, row := range s.products {
		if row.p.ProductID == productID && row.p.ID != except {
			return true
		}
	}
	return false
}

// --- inquiries ---

type inquiries Store

func (r *inquiries) Create(_ context.Context, q *models.Inquiry) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	q.ID = primitive.NewObjectID()
	q.CreatedAt, q.UpdatedAt = now, now
	s.inquiries = append(s.inquiries, inquiryRow{seq: s.next(), q: *q})
	return nil
}

func (r *inquiries) List(_ context.Context) ([]models.Inquiry, error) {
	s := (*Store)(r)
	s.mu.Lock()
	rows := append([]inquiryRow(nil), s.inquiries...)
	s.mu.Unlock()

	sort.SliceStable(rows, func(i, j int) bool {
		return newer(rows[i].q.CreatedAt, rows[i].seq, rows[j].q.CreatedAt, rows[j].seq)
	})
	out := make([]models.Inquiry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.q)
	}
	return out, nil
}

func (r *inquiries) Get(_ context.Context, id primitive.ObjectID) (models.Inquiry, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.inquiries {
		if row.q.ID == id {
			return row.q, nil
		}
	}
	return models.Inquiry{}, store.ErrNotFound
}

func (r *inquiries) SetReviewed(_ context.Context, id primitive.ObjectID, reviewed bool) (models.Inquiry, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.inquiries {
		if s.inquiries[i].q.ID == id {
			s.inquiries[i].q.Reviewed = reviewed
			s.inquiries[i].q.UpdatedAt = s.now()
			return s.inquiries[i].q, nil
		}
	}
	return models.Inquiry{}, store.ErrNotFound
}

// newer orders by creation time descending, breaking ties by insertion order.
func newer(at time.Time, seq int, bt time.Time, bseq int) bool {
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return seq > bseq
}
