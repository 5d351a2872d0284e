package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/hash"
	"github.com/isdamarket/fish_market/internal/middleware/auth"
	"github.com/isdamarket/fish_market/internal/models"
	"github.com/isdamarket/fish_market/internal/service/order"
	"github.com/isdamarket/fish_market/internal/service/review"
)

type memBuyers struct {
	byUID   map[string]*models.Buyer
	byEmail map[string]*models.Buyer
	fail    error
}

func newMemBuyers() *memBuyers {
	return &memBuyers{byUID: map[string]*models.Buyer{}, byEmail: map[string]*models.Buyer{}}
}

func (m *memBuyers) Create(_ context.Context, b *models.Buyer) error {
	if m.fail != nil {
		return m.fail
	}
	m.byUID[b.UID] = b
	m.byEmail[b.Email] = b
	return nil
}

func (m *memBuyers) GetByUID(_ context.Context, uid string) (*models.Buyer, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	if b, ok := m.byUID[uid]; ok {
		return b, nil
	}
	return nil, graph.ErrNotFound
}

func (m *memBuyers) GetByEmail(_ context.Context, email string) (*models.Buyer, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	if b, ok := m.byEmail[email]; ok {
		return b, nil
	}
	return nil, graph.ErrNotFound
}

func (m *memBuyers) List(_ context.Context) ([]models.Buyer, error) {
	out := make([]models.Buyer, 0, len(m.byUID))
	for _, b := range m.byUID {
		out = append(out, *b)
	}
	return out, nil
}

func (m *memBuyers) Update(_ context.Context, uid string, fields map[string]any) (*models.Buyer, error) {
	b, ok := m.byUID[uid]
	if !ok {
		return nil, graph.ErrNotFound
	}
	if v, ok := fields["name"].(string); ok {
		b.Name = v
	}
	if v, ok := fields["email"].(string); ok {
		delete(m.byEmail, b.Email)
		b.Email = v
		m.byEmail[v] = b
	}
	return b, nil
}

func (m *memBuyers) Delete(_ context.Context, uid string) error {
	b, ok := m.byUID[uid]
	if !ok {
		return graph.ErrNotFound
	}
	delete(m.byEmail, b.Email)
	delete(m.byUID, uid)
	return nil
}

func newJSONContext(t *testing.T, method, target string, payload any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	e := echo.New()
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestBuyerRegister(t *testing.T) {
	buyers := newMemBuyers()
	h := &BuyerHandler{Buyers: buyers}

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/buyers", map[string]string{
		"name":     "Ana",
		"email":    "ana@example.com",
		"password": "secret123",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Buyer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Ana", created.Name)
	assert.NotEmpty(t, created.UID)

	stored := buyers.byEmail["ana@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.True(t, hash.CheckPassword(stored.PasswordHash, "secret123"))
}

func TestBuyerRegisterDuplicateEmail(t *testing.T) {
	buyers := newMemBuyers()
	h := &BuyerHandler{Buyers: buyers}

	payload := map[string]string{"name": "Ana", "email": "ana@example.com", "password": "secret123"}
	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/buyers", payload)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newJSONContext(t, http.MethodPost, "/api/v1/buyers", payload)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBuyerRegisterMissingFields(t *testing.T) {
	h := &BuyerHandler{Buyers: newMemBuyers()}
	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/buyers", map[string]string{"name": "Ana"})
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuyerLogin(t *testing.T) {
	buyers := newMemBuyers()
	pwHash, err := hash.HashPassword("secret123")
	require.NoError(t, err)
	buyer := &models.Buyer{UID: "buyer-1", Name: "Ana", Email: "ana@example.com", PasswordHash: pwHash}
	buyers.byUID[buyer.UID] = buyer
	buyers.byEmail[buyer.Email] = buyer

	h := &AuthHandler{Buyers: buyers, JWTSecret: []byte("test-secret"), TokenTTL: time.Minute}

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/auth/buyer/login", map[string]string{
		"email":    "ana@example.com",
		"password": "secret123",
	})
	require.NoError(t, h.BuyerLogin(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "buyer", resp.UserType)
	assert.Equal(t, "buyer-1", resp.UID)
}

func TestBuyerLoginWrongPassword(t *testing.T) {
	buyers := newMemBuyers()
	pwHash, err := hash.HashPassword("secret123")
	require.NoError(t, err)
	buyer := &models.Buyer{UID: "buyer-1", Email: "ana@example.com", PasswordHash: pwHash}
	buyers.byEmail[buyer.Email] = buyer

	h := &AuthHandler{Buyers: buyers, JWTSecret: []byte("test-secret"), TokenTTL: time.Minute}

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/auth/buyer/login", map[string]string{
		"email":    "ana@example.com",
		"password": "wrong",
	})
	require.NoError(t, h.BuyerLogin(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "incorrect email or password", resp.Message)
}

func TestBuyerLoginUnknownEmail(t *testing.T) {
	h := &AuthHandler{Buyers: newMemBuyers(), JWTSecret: []byte("test-secret"), TokenTTL: time.Minute}
	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/auth/buyer/login", map[string]string{
		"email":    "ghost@example.com",
		"password": "whatever",
	})
	require.NoError(t, h.BuyerLogin(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginStoreOutage(t *testing.T) {
	buyers := newMemBuyers()
	buyers.fail = graph.ErrUnavailable
	h := &AuthHandler{Buyers: buyers, JWTSecret: []byte("test-secret"), TokenTTL: time.Minute}

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/auth/buyer/login", map[string]string{
		"email":    "ana@example.com",
		"password": "secret123",
	})
	require.NoError(t, h.BuyerLogin(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type stubOrders struct {
	createErr error
	detail    *models.OrderDetail
}

func (s *stubOrders) Create(_ context.Context, req order.CreateRequest) (*models.OrderDetail, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	d := *s.detail
	d.BuyerUID = req.BuyerUID
	d.Quantity = req.Quantity
	return &d, nil
}

func (s *stubOrders) UpdateStatus(_ context.Context, _, status string) (*models.OrderDetail, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	d := *s.detail
	d.Status = status
	return &d, nil
}

func (s *stubOrders) Delete(context.Context, string) error { return s.createErr }

func (s *stubOrders) Get(context.Context, string) (*models.OrderDetail, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.detail, nil
}

func (s *stubOrders) ListAll(context.Context) ([]models.OrderDetail, error) {
	return []models.OrderDetail{*s.detail}, nil
}

func (s *stubOrders) ListByBuyer(context.Context, string) ([]models.OrderDetail, error) {
	return []models.OrderDetail{*s.detail}, nil
}

func (s *stubOrders) ListBySeller(context.Context, string) ([]models.OrderDetail, error) {
	return []models.OrderDetail{*s.detail}, nil
}

func withBuyer(c echo.Context, b *models.Buyer) {
	c.Set(auth.CtxBuyer, b)
}

func TestOrderCreate(t *testing.T) {
	h := &OrderHandler{Orders: &stubOrders{detail: &models.OrderDetail{
		UID:             "order-1",
		FishProductUID:  "prod-1",
		FishProductName: "Bangus",
		TotalPrice:      300,
		Status:          models.StatusPending,
	}}}

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"fish_product_uid": "prod-1",
		"quantity":         2,
	})
	withBuyer(c, &models.Buyer{UID: "buyer-1", Name: "Ana"})

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var detail models.OrderDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "buyer-1", detail.BuyerUID)
	assert.Equal(t, 2, detail.Quantity)
	assert.Equal(t, models.StatusPending, detail.Status)
}

func TestOrderCreateWithoutBuyer(t *testing.T) {
	h := &OrderHandler{Orders: &stubOrders{}}
	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"fish_product_uid": "prod-1",
		"quantity":         2,
	})
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderCreateInsufficientStock(t *testing.T) {
	h := &OrderHandler{Orders: &stubOrders{createErr: &order.InsufficientStockError{Available: 4}}}
	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"fish_product_uid": "prod-1",
		"quantity":         10,
	})
	withBuyer(c, &models.Buyer{UID: "buyer-1"})

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Insufficient quantity. Available: 4", resp.Message)
}

func TestOrderCreateUnknownProduct(t *testing.T) {
	h := &OrderHandler{Orders: &stubOrders{createErr: order.ErrNotFound}}
	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"fish_product_uid": "ghost",
		"quantity":         1,
	})
	withBuyer(c, &models.Buyer{UID: "buyer-1"})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderCreateStoreOutage(t *testing.T) {
	h := &OrderHandler{Orders: &stubOrders{createErr: graph.ErrUnavailable}}
	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"fish_product_uid": "prod-1",
		"quantity":         1,
	})
	withBuyer(c, &models.Buyer{UID: "buyer-1"})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type stubReviews struct {
	submitErr error
	review    *models.Review
	summary   *review.Summary
}

func (s *stubReviews) Submit(_ context.Context, req review.SubmitRequest) (*models.Review, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	rv := *s.review
	rv.BuyerUID = req.BuyerUID
	rv.Rating = req.Rating
	return &rv, nil
}

func (s *stubReviews) ListBySeller(context.Context, string) ([]models.Review, error) {
	return []models.Review{*s.review}, nil
}

func (s *stubReviews) SellerSummary(context.Context, string) (*review.Summary, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return s.summary, nil
}

func TestReviewSubmit(t *testing.T) {
	h := &ReviewHandler{Reviews: &stubReviews{review: &models.Review{UID: "rev-1", SellerUID: "seller-1", OrderUID: "order-1"}}}
	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/reviews", map[string]any{
		"seller_uid": "seller-1",
		"order_uid":  "order-1",
		"rating":     5,
	})
	withBuyer(c, &models.Buyer{UID: "buyer-1", Name: "Ana"})

	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var rv models.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rv))
	assert.Equal(t, "buyer-1", rv.BuyerUID)
	assert.Equal(t, 5, rv.Rating)
}

func TestReviewSubmitDuplicate(t *testing.T) {
	h := &ReviewHandler{Reviews: &stubReviews{submitErr: review.ErrConflict}}
	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/reviews", map[string]any{
		"seller_uid": "seller-1",
		"order_uid":  "order-1",
		"rating":     5,
	})
	withBuyer(c, &models.Buyer{UID: "buyer-1"})

	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "review already submitted for this order", resp.Message)
}

func TestReviewSummary(t *testing.T) {
	h := &ReviewHandler{Reviews: &stubReviews{summary: &review.Summary{SellerUID: "seller-1", AverageRating: 3.8, ReviewCount: 5}}}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews/seller/seller-1/summary", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("uid")
	c.SetParamValues("seller-1")

	require.NoError(t, h.Summary(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary review.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.InDelta(t, 3.8, summary.AverageRating, 1e-9)
	assert.Equal(t, 5, summary.ReviewCount)
}
