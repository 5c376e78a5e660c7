package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/auth"
	"storefront-backend/internal/models"
	"storefront-backend/internal/notify"
	"storefront-backend/internal/store"
	"storefront-backend/internal/store/memstore"
)

type fixture struct {
	users     store.Users
	identity  *IdentityService
	guard     *Guard
	cart      *CartService
	catalog   *CatalogService
	inquiries *InquiryService
	admin     *UserAdminService
	published *recordingPublisher
}

type recordingPublisher struct {
	events []notify.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev notify.Event) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memstore.New()
	logger := zerolog.Nop()
	hasher := auth.NewHasher(4)
	identity := NewIdentityService(db.Users(), auth.NewTokens("test-secret", time.Hour), hasher, logger)
	pub := &recordingPublisher{}
	return &fixture{
		users:     db.Users(),
		identity:  identity,
		guard:     NewGuard(identity, db.Users(), logger),
		cart:      NewCartService(db.Users(), logger),
		catalog:   NewCatalogService(db.Products(), logger),
		inquiries: NewInquiryService(db.Inquiries(), pub, logger),
		admin:     NewUserAdminService(db.Users(), hasher, logger),
		published: pub,
	}
}

func (f *fixture) register(t *testing.T, email string) Session {
	t.Helper()
	s, err := f.identity.Register(context.Background(), email, "secret", "Name "+email)
	require.NoError(t, err)
	return s
}

func (f *fixture) promote(t *testing.T, email string) {
	t.Helper()
	_, err := f.users.SetRoleByEmail(context.Background(), email, models.RoleAdmin)
	require.NoError(t, err)
}

func kind(err error) apperr.Kind { return apperr.KindOf(err) }

func TestRegister_TokenResolvesToNewUser(t *testing.T) {
	f := newFixture(t)

	s := f.register(t, "  Ann@Example.COM ")
	assert.Equal(t, "ann@example.com", s.User.Email)
	assert.Equal(t, models.RoleUser, s.User.Role)

	id, err := f.identity.Verify(s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, id.Hex())
}

func TestRegister_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ann@example.com")

	_, err := f.identity.Register(ctx, "ANN@example.com", "x", "Ann")
	assert.Equal(t, apperr.KindConflict, kind(err))

	_, err = f.identity.Register(ctx, "bob@example.com", "", "Bob")
	assert.Equal(t, apperr.KindValidation, kind(err))
	assert.Equal(t, "Email, password, and name are required", apperr.Message(err))
}

func TestLogin_NoEnumeration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ann@example.com")

	_, wrongPass := f.identity.Login(ctx, "ann@example.com", "nope")
	_, noUser := f.identity.Login(ctx, "ghost@example.com", "secret")

	require.Error(t, wrongPass)
	require.Error(t, noUser)
	assert.Equal(t, apperr.KindAuth, kind(wrongPass))
	assert.Equal(t, apperr.Message(wrongPass), apperr.Message(noUser))

	s, err := f.identity.Login(ctx, " ANN@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)

	_, err = f.identity.Login(ctx, "", "secret")
	assert.Equal(t, apperr.KindValidation, kind(err))
}

func TestLogin_DisabledAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.register(t, "ann@example.com")

	inactive := false
	_, err := f.admin.Update(ctx, s.User.ID, UserPatch{IsActive: &inactive})
	require.NoError(t, err)

	_, err = f.identity.Login(ctx, "ann@example.com", "secret")
	assert.Equal(t, apperr.KindAuth, kind(err))
	assert.Equal(t, "Account is disabled", apperr.Message(err))
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.register(t, "ann@example.com")

	_, err := f.users.SetRoleByEmail(ctx, "ann@example.com", "superuser")
	require.NoError(t, err)
	me, err := f.identity.Me(ctx, "Bearer "+s.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, me.Role)

	_, err = f.identity.Me(ctx, "")
	assert.Equal(t, apperr.KindAuth, kind(err))
	_, err = f.identity.Me(ctx, "Bearer junk")
	assert.Equal(t, apperr.KindAuth, kind(err))

	oid, _ := models.ParseID(s.User.ID)
	require.NoError(t, f.users.Delete(ctx, oid))
	_, err = f.identity.Me(ctx, "Bearer "+s.Token)
	assert.Equal(t, apperr.KindNotFound, kind(err))
}

func TestGuard_RequireAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "user@example.com")
	admin := f.register(t, "admin@example.com")
	f.promote(t, "admin@example.com")

	_, err := f.guard.RequireAdmin(ctx, "")
	assert.Equal(t, apperr.KindAuth, kind(err))

	_, err = f.guard.RequireAdmin(ctx, "Bearer not-a-token")
	assert.Equal(t, apperr.KindAuth, kind(err))

	_, err = f.guard.RequireAdmin(ctx, "Bearer "+user.Token)
	assert.Equal(t, apperr.KindForbidden, kind(err))

	got, err := f.guard.RequireAdmin(ctx, "Bearer "+admin.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.User.ID, got.ID.Hex())

	require.NoError(t, f.users.Delete(ctx, got.ID))
	_, err = f.guard.RequireAdmin(ctx, "Bearer "+admin.Token)
	assert.Equal(t, apperr.KindNotFound, kind(err))
}

func TestCartService_MergeTwiceDoubleCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.register(t, "ann@example.com")
	uid, err := f.guard.Authenticate("Bearer " + s.Token)
	require.NoError(t, err)

	p1 := models.CartItem{ProductID: "p1", ProductName: "One", ProductPrice: models.NumberPrice(3)}
	_, err = f.cart.Add(ctx, uid, &p1, 2)
	require.NoError(t, err)

	guest := []models.CartItem{{ProductID: "p1", Quantity: 3}, {ProductID: "p2", Quantity: 1}}
	items, err := f.cart.Merge(ctx, uid, guest)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p1": 5, "p2": 1}, qty(items))

	items, err = f.cart.Merge(ctx, uid, guest)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p1": 8, "p2": 2}, qty(items))

	stored, err := f.cart.Get(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, qty(items), qty(stored))
}

func TestCartService_SyncRemoveClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.register(t, "ann@example.com")
	uid, _ := models.ParseID(s.User.ID)

	items, err := f.cart.Sync(ctx, uid, []models.CartItem{
		{ProductID: "x", ProductName: "", ProductPrice: models.NumberPrice(5), Quantity: 1},
	})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)

	items, err = f.cart.Sync(ctx, uid, []models.CartItem{
		{ProductID: "a", ProductName: "A", ProductPrice: models.TextPrice("1.00"), Quantity: 1},
		{ProductID: "b", ProductName: "B", ProductPrice: models.NumberPrice(2), Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	stored, err := f.cart.Get(ctx, uid)
	require.NoError(t, err)
	for _, it := range stored {
		assert.False(t, it.AddedAt.IsZero(), it.ProductID)
	}

	items, err = f.cart.Remove(ctx, uid, "a")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"b": 3}, qty(items))

	items, err = f.cart.Remove(ctx, uid, "missing")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = f.cart.Clear(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartService_AddNeverStoresNonPositiveQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.register(t, "ann@example.com")
	uid, _ := models.ParseID(s.User.ID)
	product := &models.CartItem{ProductID: "p1", ProductName: "Chair", ProductPrice: models.NumberPrice(5)}

	_, err := f.cart.Add(ctx, uid, product, 1)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, uid, product, math.MaxInt)
	require.NoError(t, err)

	stored, err := f.cart.Get(ctx, uid)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, math.MaxInt, stored[0].Quantity)
}

func TestCartService_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.register(t, "ann@example.com")
	uid, _ := models.ParseID(s.User.ID)

	_, err := f.cart.Add(ctx, uid, nil, 1)
	assert.Equal(t, apperr.KindValidation, kind(err))
	_, err = f.cart.Add(ctx, uid, &models.CartItem{}, 1)
	assert.Equal(t, apperr.KindValidation, kind(err))
	_, err = f.cart.Add(ctx, uid, &models.CartItem{ProductID: "p"}, 0)
	assert.Equal(t, apperr.KindValidation, kind(err))

	_, err = f.cart.Get(ctx, primitive.NewObjectID())
	assert.Equal(t, apperr.KindNotFound, kind(err))
	assert.Equal(t, "User not found", apperr.Message(err))
}

func TestCatalog_ProductIDConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.catalog.Create(ctx, models.Product{ProductID: "SKU-1", ProductName: "Chair"})
	require.NoError(t, err)
	_, err = f.catalog.Create(ctx, models.Product{ProductID: "SKU-1", ProductName: "Other"})
	assert.Equal(t, apperr.KindConflict, kind(err))
	assert.Equal(t, msgProductIDTaken, apperr.Message(err))

	second, err := f.catalog.Create(ctx, models.Product{ProductID: "SKU-2"})
	require.NoError(t, err)
	_, err = f.catalog.Update(ctx, second.ID.Hex(), []byte(`{"productId":"SKU-1"}`))
	assert.Equal(t, apperr.KindConflict, kind(err))

	updated, err := f.catalog.Update(ctx, first.ID.Hex(), []byte(`{"productPrice":19.5,"productCategory":"chairs"}`))
	require.NoError(t, err)
	assert.Equal(t, "Chair", updated.ProductName)
	assert.Equal(t, models.Text("19.5"), updated.ProductPrice)
	assert.Equal(t, first.CreatedAt, updated.CreatedAt)

	chairs, err := f.catalog.ByCategory(ctx, "chairs")
	require.NoError(t, err)
	assert.Len(t, chairs, 1)
}

func TestCatalog_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.Get(ctx, "not-an-id")
	assert.Equal(t, apperr.KindNotFound, kind(err))
	_, err = f.catalog.Get(ctx, primitive.NewObjectID().Hex())
	assert.Equal(t, apperr.KindNotFound, kind(err))
	_, err = f.catalog.Update(ctx, "zzz", []byte(`{}`))
	assert.Equal(t, apperr.KindNotFound, kind(err))
	assert.Equal(t, apperr.KindNotFound, kind(f.catalog.Delete(ctx, primitive.NewObjectID().Hex())))

	p, err := f.catalog.Create(ctx, models.Product{})
	require.NoError(t, err)
	_, err = f.catalog.Update(ctx, p.ID.Hex(), []byte(`{"productName":`))
	assert.Equal(t, apperr.KindValidation, kind(err))
	require.NoError(t, f.catalog.Delete(ctx, p.ID.Hex()))
}

func TestCatalog_Seed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.catalog.Seed(ctx, []models.Product{{ProductID: "a"}, {ProductID: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = f.catalog.Seed(ctx, []models.Product{{ProductID: "a"}, {ProductID: "a"}})
	assert.Equal(t, apperr.KindConflict, kind(err))
}

func TestInquiry_SubmitAndTriage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inquiries.Submit(ctx, InquirySubmission{Firstname: "Ann", Email: "ann@x.io"})
	assert.Equal(t, apperr.KindValidation, kind(err))
	assert.Empty(t, f.published.events)

	id, err := f.inquiries.Submit(ctx, InquirySubmission{Firstname: "Ann", Email: "ann@x.io", TextMessage: "Hello"})
	require.NoError(t, err)
	require.Len(t, f.published.events, 1)
	assert.Equal(t, notify.TypeInquirySubmitted, f.published.events[0].Type)
	assert.Equal(t, id.Hex(), f.published.events[0].ID)

	got, err := f.inquiries.Get(ctx, id.Hex())
	require.NoError(t, err)
	assert.False(t, got.Reviewed)
	assert.Equal(t, "", got.Lastname)

	same, err := f.inquiries.SetReviewed(ctx, id.Hex(), nil)
	require.NoError(t, err)
	assert.False(t, same.Reviewed)

	yes := true
	reviewed, err := f.inquiries.SetReviewed(ctx, id.Hex(), &yes)
	require.NoError(t, err)
	assert.True(t, reviewed.Reviewed)

	_, err = f.inquiries.Get(ctx, "1234")
	assert.Equal(t, apperr.KindValidation, kind(err))
	_, err = f.inquiries.SetReviewed(ctx, primitive.NewObjectID().Hex(), &yes)
	assert.Equal(t, apperr.KindNotFound, kind(err))
}

func TestInquiry_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.published.err = errors.New("broker down")

	_, err := f.inquiries.Submit(context.Background(), InquirySubmission{Firstname: "A", Email: "a@x.io", TextMessage: "m"})
	require.NoError(t, err)

	list, err := f.inquiries.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUserAdmin_CreateAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.admin.Create(ctx, NewUser{Name: "  Zed ", Email: "ZED@x.io", Password: "pw", Role: "Admin"})
	require.NoError(t, err)
	assert.Equal(t, "Zed", created.Name)
	assert.Equal(t, "zed@x.io", created.Email)
	assert.Equal(t, models.RoleUser, created.Role)
	assert.True(t, created.IsActive)

	_, err = f.admin.Create(ctx, NewUser{Name: "Z", Email: "zed@x.io", Password: "pw"})
	assert.Equal(t, apperr.KindConflict, kind(err))
	_, err = f.admin.Create(ctx, NewUser{Email: "q@x.io", Password: "pw"})
	assert.Equal(t, apperr.KindValidation, kind(err))

	role, name := "admin", " Zedd "
	updated, err := f.admin.Update(ctx, created.ID.Hex(), UserPatch{Role: &role, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.Equal(t, "Zedd", updated.Name)

	_, err = f.admin.Update(ctx, "bad", UserPatch{})
	assert.Equal(t, apperr.KindValidation, kind(err))
	_, err = f.admin.Update(ctx, primitive.NewObjectID().Hex(), UserPatch{})
	assert.Equal(t, apperr.KindNotFound, kind(err))

	list, err := f.admin.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUserAdmin_DeleteGuardsSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin@x.io")
	other := f.register(t, "other@x.io")
	adminID, _ := models.ParseID(admin.User.ID)

	err := f.admin.Delete(ctx, adminID, admin.User.ID)
	assert.Equal(t, apperr.KindValidation, kind(err))
	assert.Equal(t, "You cannot delete your own account", apperr.Message(err))

	require.NoError(t, f.admin.Delete(ctx, adminID, other.User.ID))
	_, err = f.admin.Get(ctx, other.User.ID)
	assert.Equal(t, apperr.KindNotFound, kind(err))
	assert.Equal(t, apperr.KindNotFound, kind(f.admin.Delete(ctx, adminID, other.User.ID)))
}

func qty(items []models.CartItem) map[string]int {
	out := map[string]int{}
	for _, it := range items {
		out[it.ProductID] = it.Quantity
	}
	return out
}
