package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/restock-api/internal/domain"
	"github.com/restock-api/internal/infrastructure/shopify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockCredentials struct{ mock.Mock }

func (m *mockCredentials) Token(ctx context.Context, shop, app string) (string, error) {
	args := m.Called(ctx, shop, app)
	return args.String(0), args.Error(1)
}

type mockResolver struct{ mock.Mock }

func (m *mockResolver) Resolve(ctx context.Context, storeDomain, accessToken, variantID string) (*shopify.Variant, error) {
	args := m.Called(ctx, storeDomain, accessToken, variantID)
	if v, _ := args.Get(0).(*shopify.Variant); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendHTML(to, subject, htmlBody string) error {
	return m.Called(to, subject, htmlBody).Error(0)
}

// --- helpers ---

func newTestService(store *mockPendingStore, creds *mockCredentials, resolver *mockResolver, mailer *mockMailer) Service {
	cache := NewCache(store, time.Second, 8)
	return NewService(cache, creds, resolver, mailer)
}

func validSignup() SignupRequest {
	return SignupRequest{
		Name:          "Uma",
		Email:         "u@test.com",
		ProductID:     "100",
		VariantID:     "200",
		ProductTitle:  "Wool Socks",
		ProductHandle: "wool-socks",
		StoreDomain:   "shop.test",
		App:           "restock",
	}
}

// --- RegisterInterest ---

func TestRegisterInterest_HappyPath(t *testing.T) {
	store, creds, resolver, mailer := &mockPendingStore{}, &mockCredentials{}, &mockResolver{}, &mockMailer{}

	creds.On("Token", mock.Anything, "shop.test", "restock").Return("tok", nil)
	store.On("FindPending", mock.Anything, "u@test.com", "100", "200", "shop.test").Return(nil, nil)
	resolver.On("Resolve", mock.Anything, "shop.test", "tok", "200").
		Return(&shopify.Variant{InventoryItemID: "999", Title: "Large"}, nil)
	stubPutAssignsID(store, "01REQ")

	created, err := newTestService(store, creds, resolver, mailer).
		RegisterInterest(context.Background(), validSignup())

	require.NoError(t, err)
	assert.Equal(t, "01REQ", created.RequestID)
	assert.Equal(t, "999", created.InventoryItemID)
	assert.Equal(t, "Large", created.VariantTitle)
	assert.False(t, created.Notified)
}

func TestRegisterInterest_MissingFields(t *testing.T) {
	store, creds, resolver, mailer := &mockPendingStore{}, &mockCredentials{}, &mockResolver{}, &mockMailer{}

	req := validSignup()
	req.Email = ""

	_, err := newTestService(store, creds, resolver, mailer).
		RegisterInterest(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	creds.AssertNotCalled(t, "Token", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterInterest_StaleCredentialFailsClosed(t *testing.T) {
	store, creds, resolver, mailer := &mockPendingStore{}, &mockCredentials{}, &mockResolver{}, &mockMailer{}

	creds.On("Token", mock.Anything, "shop.test", "restock").
		Return("", domain.ErrStaleCredential)

	_, err := newTestService(store, creds, resolver, mailer).
		RegisterInterest(context.Background(), validSignup())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStaleCredential))
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegisterInterest_DuplicateRejected(t *testing.T) {
	store, creds, resolver, mailer := &mockPendingStore{}, &mockCredentials{}, &mockResolver{}, &mockMailer{}

	creds.On("Token", mock.Anything, "shop.test", "restock").Return("tok", nil)
	store.On("FindPending", mock.Anything, "u@test.com", "100", "200", "shop.test").
		Return(&domain.NotificationRequest{RequestID: "01OLD"}, nil)

	_, err := newTestService(store, creds, resolver, mailer).
		RegisterInterest(context.Background(), validSignup())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegisterInterest_ResolverFailure_FilesUnderUnresolved(t *testing.T) {
	store, creds, resolver, mailer := &mockPendingStore{}, &mockCredentials{}, &mockResolver{}, &mockMailer{}

	creds.On("Token", mock.Anything, "shop.test", "restock").Return("tok", nil)
	store.On("FindPending", mock.Anything, "u@test.com", "100", "200", "shop.test").Return(nil, nil)
	resolver.On("Resolve", mock.Anything, "shop.test", "tok", "200").
		Return(nil, errors.New("admin api returned 404 Not Found"))
	stubPutAssignsID(store, "01REQ")

	created, err := newTestService(store, creds, resolver, mailer).
		RegisterInterest(context.Background(), validSignup())

	// Signup still succeeds; the request is segregated, not lost.
	require.NoError(t, err)
	assert.Equal(t, domain.UnresolvedInventoryItem, created.InventoryItemID)
}

// --- HandleRestock ---

func pendingFixture() []domain.NotificationRequest {
	return []domain.NotificationRequest{
		{RequestID: "01A", Name: "Ann", Email: "a@test.com", ProductID: "100", VariantID: "200",
			InventoryItemID: "999", ProductTitle: "Wool Socks", ProductHandle: "wool-socks", StoreDomain: "shop.test"},
		{RequestID: "01B", Name: "Ben", Email: "b@test.com", ProductID: "100", VariantID: "200",
			InventoryItemID: "999", ProductTitle: "Wool Socks", ProductHandle: "wool-socks", StoreDomain: "shop.test"},
	}
}

func TestHandleRestock_FansOutAndEvicts(t *testing.T) {
	store, creds, resolver, mailer := &mockPendingStore{}, &mockCredentials{}, &mockResolver{}, &mockMailer{}

	store.On("ListPendingByItem", mock.Anything, "999").Return(pendingFixture(), nil)
	store.On("MarkNotified", mock.Anything, mock.Anything).Return(nil)
	mailer.On("SendHTML", "a@test.com", mock.Anything, mock.Anything).Return(nil)
	mailer.On("SendHTML", "b@test.com", mock.Anything, mock.Anything).Return(nil)

	cache := NewCache(store, time.Second, 8)
	svc := NewService(cache, creds, resolver, mailer)

	notified, err := svc.HandleRestock(context.Background(), "999", 3)

	require.NoError(t, err)
	assert.Equal(t, 2, notified)
	store.AssertCalled(t, "MarkNotified", mock.Anything, "01A")
	store.AssertCalled(t, "MarkNotified", mock.Anything, "01B")

	pending, err := cache.PendingForItem(context.Background(), "999")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestHandleRestock_SubjectNamesTheProduct(t *testing.T) {
	store, creds, resolver, mailer := &mockPendingStore{}, &mockCredentials{}, &mockResolver{}, &mockMailer{}

	store.On("ListPendingByItem", mock.Anything, "999").Return(pendingFixture()[:1], nil)
	store.On("MarkNotified", mock.Anything, "01A").Return(nil)
	mailer.On("SendHTML", "a@test.com", "Wool Socks is back in stock!", mock.Anything).Return(nil)

	notified, err := newTestService(store, creds, resolver, mailer).
		HandleRestock(context.Background(), "999", 1)

	require.NoError(t, err)
	assert.Equal(t, 1, notified)
	mailer.AssertExpectations(t)
}

func TestHandleRestock_DispatchFailureLeavesEntryPending(t *testing.T) {
	store, creds, resolver, mailer := &mockPendingStore{}, &mockCredentials{}, &mockResolver{}, &mockMailer{}

	store.On("ListPendingByItem", mock.Anything, "999").Return(pendingFixture(), nil)
	store.On("MarkNotified", mock.Anything, "01B").Return(nil)
	mailer.On("SendHTML", "a@test.com", mock.Anything, mock.Anything).Return(errors.New("smtp 451"))
	mailer.On("SendHTML", "b@test.com", mock.Anything, mock.Anything).Return(nil)

	cache := NewCache(store, time.Second, 8)
	svc := NewService(cache, creds, resolver, mailer)

	notified, err := svc.HandleRestock(context.Background(), "999", 3)

	require.Error(t, err)
	assert.Equal(t, 1, notified)
	// Ann's entry was never marked; she stays eligible for the next restock.
	store.AssertNotCalled(t, "MarkNotified", mock.Anything, "01A")

	pending, err := cache.PendingForItem(context.Background(), "999")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a@test.com", pending[0].Email)
}

func TestHandleRestock_NotInStockIsANoOp(t *testing.T) {
	store, creds, resolver, mailer := &mockPendingStore{}, &mockCredentials{}, &mockResolver{}, &mockMailer{}

	notified, err := newTestService(store, creds, resolver, mailer).
		HandleRestock(context.Background(), "999", 0)

	require.NoError(t, err)
	assert.Zero(t, notified)
	store.AssertNotCalled(t, "ListPendingByItem", mock.Anything, mock.Anything)
}

func TestHandleRestock_LoadErrorPropagates(t *testing.T) {
	store, creds, resolver, mailer := &mockPendingStore{}, &mockCredentials{}, &mockResolver{}, &mockMailer{}

	store.On("ListPendingByItem", mock.Anything, "999").Return(nil, errors.New("timeout"))

	_, err := newTestService(store, creds, resolver, mailer).
		HandleRestock(context.Background(), "999", 5)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	mailer.AssertNotCalled(t, "SendHTML", mock.Anything, mock.Anything, mock.Anything)
}
