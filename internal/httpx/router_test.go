package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keraflour/storefront/internal/auth"
	"github.com/keraflour/storefront/internal/cart"
	"github.com/keraflour/storefront/internal/catalog"
	"github.com/keraflour/storefront/internal/checkout"
	"github.com/keraflour/storefront/internal/domain"
	"github.com/keraflour/storefront/internal/payments"
	"github.com/keraflour/storefront/internal/pkg/cache"
	"github.com/keraflour/storefront/internal/store/sqlite"
)

const testTokenKey = "12345678901234567890123456789012"

// stubGateway is the processor stand-in for router-level tests.
type stubGateway struct {
	status string
}

func (s *stubGateway) CreateSession(_ context.Context, order *domain.Order) (*payments.Session, error) {
	return &payments.Session{
		ID:            "cs_" + order.ID,
		URL:           "https://pay.example/cs_" + order.ID,
		PaymentStatus: payments.StatusUnpaid,
		AmountTotal:   order.TotalAmount.Mul(decimal.NewFromInt(100)).IntPart(),
	}, nil
}

func (s *stubGateway) GetSession(_ context.Context, sessionID string) (*payments.Session, error) {
	status := s.status
	if status == "" {
		status = payments.StatusUnpaid
	}
	return &payments.Session{ID: sessionID, PaymentStatus: status, AmountTotal: 8000}, nil
}

type stubVerifier struct {
	email string
	err   error
}

func (s stubVerifier) VerifyIDToken(context.Context, string) (string, error) {
	return s.email, s.err
}

type testEnv struct {
	router http.Handler
	db     *sqlite.Store
	gw     *stubGateway
	maker  auth.Maker
}

func newTestEnv(t *testing.T, adminReadOnly bool) *testEnv {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mr := miniredis.RunT(t)
	redisCache := cache.NewRedisCache(mr.Addr(), "storefront")

	maker, err := auth.NewPasetoMaker(testTokenKey)
	require.NoError(t, err)

	gw := &stubGateway{}
	authSvc := auth.NewService(db, maker, stubVerifier{email: "synced@example.com"}, time.Hour)

	handler := NewHandler(
		catalog.NewService(db, redisCache),
		cart.NewService(db, db),
		checkout.NewOrchestrator(db, db, db, gw),
		checkout.NewConfirmer(gw, db, db, db, redisCache),
		authSvc,
		db, db,
		adminReadOnly,
	)

	return &testEnv{
		router: NewRouter(handler, maker),
		db:     db,
		gw:     gw,
		maker:  maker,
	}
}

func (e *testEnv) createUser(t *testing.T, email string, role domain.Role) (*domain.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("hunter2s")
	require.NoError(t, err)
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, e.db.CreateUser(context.Background(), u))

	token, _, err := e.maker.CreateToken(u, time.Hour)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) seedProduct(t *testing.T, name, price string) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:         uuid.NewString(),
		Name:       name,
		Slug:       catalog.Slugify(name),
		PricePerKg: decimal.RequireFromString(price),
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, e.db.CreateProduct(context.Background(), p))
	return p
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func checkoutBody(addOn string) map[string]any {
	addr := map[string]string{"place": "Mill Rd", "city": "Kochi", "state": "KL", "pincode": "682001"}
	body := map[string]any{
		"addOn":    addOn,
		"slotDate": time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02"),
		"slotTime": "10:00 AM",
	}
	switch addOn {
	case "pickup":
		body["pickupAddress"] = addr
	case "delivery":
		body["deliveryAddress"] = addr
	case "both":
		body["pickupAddress"] = addr
		body["deliveryAddress"] = addr
	}
	return body
}

func TestProductListIsPublic(t *testing.T) {
	env := newTestEnv(t, false)
	env.seedProduct(t, "Wheat Flour", "35.5")

	rec := env.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	products := decodeBody[[]ProductResponse](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "wheat-flour", products[0].Slug)
	assert.InDelta(t, 35.5, products[0].PricePerKg, 0.001)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, false)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/cart"},
		{http.MethodPost, "/api/orders"},
		{http.MethodGet, "/api/orders/my"},
		{http.MethodPost, "/api/payments/stripe-checkout"},
		{http.MethodPost, "/api/products"},
		{http.MethodGet, "/api/orders/all"},
		{http.MethodGet, "/auth/me"},
	} {
		rec := env.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}

	rec := env.do(t, http.MethodGet, "/api/cart", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	env := newTestEnv(t, false)
	_, userToken := env.createUser(t, "user@example.com", domain.RoleUser)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/products"},
		{http.MethodGet, "/api/orders/all"},
	} {
		rec := env.do(t, tc.method, tc.path, userToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestAdminProductCRUD(t *testing.T) {
	env := newTestEnv(t, false)
	_, adminToken := env.createUser(t, "admin@example.com", domain.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/api/products", adminToken,
		map[string]any{"name": "Ragi Flour", "pricePerKg": 60.0, "image": "ragi.jpg"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[ProductResponse](t, rec)
	assert.Equal(t, "ragi-flour", created.Slug)

	rec = env.do(t, http.MethodPut, "/api/products/ragi-flour", adminToken,
		map[string]any{"pricePerKg": 65.0})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[ProductResponse](t, rec)
	assert.InDelta(t, 65.0, updated.PricePerKg, 0.001)
	assert.Equal(t, "Ragi Flour", updated.Name)

	rec = env.do(t, http.MethodDelete, "/api/products/ragi-flour", adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/products/ragi-flour", adminToken,
		map[string]any{"pricePerKg": 70.0})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReadOnlyModeBlocksCatalogMutations(t *testing.T) {
	env := newTestEnv(t, true)
	_, adminToken := env.createUser(t, "admin@example.com", domain.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/api/products", adminToken,
		map[string]any{"name": "Ragi Flour", "pricePerKg": 60.0})
	require.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "read_only", body.Error)

	// Reads still work.
	rec = env.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t, false)
	_, token := env.createUser(t, "user@example.com", domain.RoleUser)
	p := env.seedProduct(t, "Wheat Flour", "20")

	rec := env.do(t, http.MethodPost, "/api/cart/items", token,
		map[string]any{"productId": p.ID, "quantityKg": 1.5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c := decodeBody[CartResponse](t, rec)
	require.Len(t, c.Items, 1)
	assert.InDelta(t, 30.0, c.Items[0].LineTotal, 0.001)
	assert.InDelta(t, 30.0, c.TotalAmount, 0.001)

	// Adding the same product merges into one line.
	rec = env.do(t, http.MethodPost, "/api/cart/items", token,
		map[string]any{"productId": p.ID, "quantityKg": 0.5})
	require.Equal(t, http.StatusOK, rec.Code)
	c = decodeBody[CartResponse](t, rec)
	require.Len(t, c.Items, 1)
	assert.InDelta(t, 2.0, c.Items[0].QuantityKg, 0.001)

	rec = env.do(t, http.MethodDelete, "/api/cart/items/"+p.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	c = decodeBody[CartResponse](t, rec)
	assert.Empty(t, c.Items)

	rec = env.do(t, http.MethodDelete, "/api/cart", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCartRejectsBadAdds(t *testing.T) {
	env := newTestEnv(t, false)
	_, token := env.createUser(t, "user@example.com", domain.RoleUser)
	p := env.seedProduct(t, "Wheat Flour", "20")

	rec := env.do(t, http.MethodPost, "/api/cart/items", token,
		map[string]any{"productId": p.ID, "quantityKg": 0.0})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/cart/items", token,
		map[string]any{"productId": uuid.NewString(), "quantityKg": 1.0})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCODOrderEndToEnd(t *testing.T) {
	env := newTestEnv(t, false)
	_, token := env.createUser(t, "user@example.com", domain.RoleUser)
	p := env.seedProduct(t, "Wheat Flour", "20")

	rec := env.do(t, http.MethodPost, "/api/cart/items", token,
		map[string]any{"productId": p.ID, "quantityKg": 2.0})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/orders", token, checkoutBody("delivery"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decodeBody[OrderResponse](t, rec)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "pending", order.PaymentStatus)
	assert.Equal(t, "cod", order.PaymentMethod)
	assert.Equal(t, "delivery", order.AddOn)
	assert.InDelta(t, 40.0, order.AddOnCharge, 0.001)
	assert.InDelta(t, 80.0, order.TotalAmount, 0.001)
	require.NotNil(t, order.DeliveryAddress)
	assert.Equal(t, "682001", order.DeliveryAddress.Pincode)

	// The cart is gone after a COD placement.
	rec = env.do(t, http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	c := decodeBody[CartResponse](t, rec)
	assert.Empty(t, c.Items)

	// The order shows up in the owner's history and detail view.
	rec = env.do(t, http.MethodGet, "/api/orders/my", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decodeBody[[]OrderResponse](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, order.ID, mine[0].ID)

	rec = env.do(t, http.MethodGet, "/api/orders/"+order.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another customer cannot see it; an admin can.
	_, otherToken := env.createUser(t, "other@example.com", domain.RoleUser)
	rec = env.do(t, http.MethodGet, "/api/orders/"+order.ID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, adminToken := env.createUser(t, "admin@example.com", domain.RoleAdmin)
	rec = env.do(t, http.MethodGet, "/api/orders/"+order.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckoutValidationFailures(t *testing.T) {
	env := newTestEnv(t, false)
	_, token := env.createUser(t, "user@example.com", domain.RoleUser)

	// Empty cart.
	rec := env.do(t, http.MethodPost, "/api/orders", token, checkoutBody("none"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "validation_failed", body.Error)

	// Card below the minimum.
	p := env.seedProduct(t, "Sooji", "30")
	rec = env.do(t, http.MethodPost, "/api/cart/items", token,
		map[string]any{"productId": p.ID, "quantityKg": 1.0})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/payments/stripe-checkout", token, checkoutBody("none"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Delivery without an address.
	reqBody := checkoutBody("delivery")
	delete(reqBody, "deliveryAddress")
	rec = env.do(t, http.MethodPost, "/api/orders", token, reqBody)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Missing slot.
	reqBody = checkoutBody("none")
	reqBody["slotDate"] = ""
	rec = env.do(t, http.MethodPost, "/api/orders", token, reqBody)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCardCheckoutAndConfirmation(t *testing.T) {
	env := newTestEnv(t, false)
	_, token := env.createUser(t, "user@example.com", domain.RoleUser)
	p := env.seedProduct(t, "Wheat Flour", "20")

	rec := env.do(t, http.MethodPost, "/api/cart/items", token,
		map[string]any{"productId": p.ID, "quantityKg": 2.0})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/payments/stripe-checkout", token, checkoutBody("delivery"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	co := decodeBody[StripeCheckoutResponse](t, rec)
	require.NotEmpty(t, co.URL)
	require.NotEmpty(t, co.OrderID)

	// Cart is still there while the payment is in flight.
	rec = env.do(t, http.MethodGet, "/api/cart", token, nil)
	c := decodeBody[CartResponse](t, rec)
	assert.Len(t, c.Items, 1)

	// An unpaid poll changes nothing.
	sessionID := "cs_" + co.OrderID
	rec = env.do(t, http.MethodGet, "/api/payments/stripe-session/"+sessionID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sess := decodeBody[StripeSessionResponse](t, rec)
	assert.Equal(t, "unpaid", sess.PaymentStatus)

	// The processor reports paid: the first poll confirms and clears.
	env.gw.status = payments.StatusPaid
	rec = env.do(t, http.MethodGet, "/api/payments/stripe-session/"+sessionID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sess = decodeBody[StripeSessionResponse](t, rec)
	assert.Equal(t, "paid", sess.PaymentStatus)

	rec = env.do(t, http.MethodGet, "/api/orders/"+co.OrderID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	order := decodeBody[OrderResponse](t, rec)
	assert.Equal(t, "confirmed", order.Status)
	assert.Equal(t, "paid", order.PaymentStatus)

	rec = env.do(t, http.MethodGet, "/api/cart", token, nil)
	c = decodeBody[CartResponse](t, rec)
	assert.Empty(t, c.Items)

	// Re-polling stays 200/paid and has no further effect.
	rec = env.do(t, http.MethodGet, "/api/payments/stripe-session/"+sessionID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminOrderManagement(t *testing.T) {
	env := newTestEnv(t, false)
	_, token := env.createUser(t, "user@example.com", domain.RoleUser)
	_, adminToken := env.createUser(t, "admin@example.com", domain.RoleAdmin)
	p := env.seedProduct(t, "Wheat Flour", "20")

	rec := env.do(t, http.MethodPost, "/api/cart/items", token,
		map[string]any{"productId": p.ID, "quantityKg": 2.0})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/orders", token, checkoutBody("none"))
	require.Equal(t, http.StatusCreated, rec.Code)
	order := decodeBody[OrderResponse](t, rec)

	rec = env.do(t, http.MethodGet, "/api/orders/all", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decodeBody[[]OrderResponse](t, rec)
	require.Len(t, all, 1)

	rec = env.do(t, http.MethodPut, "/api/orders/"+order.ID+"/status", adminToken,
		map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[OrderResponse](t, rec)
	assert.Equal(t, "confirmed", updated.Status)

	// delivered -> canceled is not a legal move after delivery.
	rec = env.do(t, http.MethodPut, "/api/orders/"+order.ID+"/status", adminToken,
		map[string]string{"status": "delivered"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/orders/"+order.ID+"/status", adminToken,
		map[string]string{"status": "canceled"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "invalid_transition", body.Error)
}

func TestAuthEndpoints(t *testing.T) {
	env := newTestEnv(t, false)
	u, _ := env.createUser(t, "mira@example.com", domain.RoleUser)

	rec := env.do(t, http.MethodPost, "/auth/login", "",
		map[string]string{"email": "mira@example.com", "password": "hunter2s"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decodeBody[TokenResponse](t, rec)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, u.ID, login.User.ID)

	rec = env.do(t, http.MethodGet, "/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[UserResponse](t, rec)
	assert.Equal(t, "mira@example.com", me.Email)

	rec = env.do(t, http.MethodPost, "/auth/login", "",
		map[string]string{"email": "mira@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSyncUser(t *testing.T) {
	env := newTestEnv(t, false)

	rec := env.do(t, http.MethodPost, "/api/auth/sync-user", "",
		map[string]string{"token": "provider-token", "name": "Synced"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decodeBody[TokenResponse](t, rec)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, "synced@example.com", res.User.Email)
	assert.Equal(t, "user", res.User.Role)

	// The returned token is immediately usable.
	rec = env.do(t, http.MethodGet, "/auth/me", res.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Missing token body is a validation failure, not an auth one.
	rec = env.do(t, http.MethodPost, "/api/auth/sync-user", "", map[string]string{"name": "X"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
