package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/middleware/auth"
	"github.com/isdamarket/fish_market/internal/models"
	"github.com/isdamarket/fish_market/internal/repo"
)

type memProducts struct {
	byUID  map[string]*models.FishProduct
	owners map[string]*models.Seller
}

func newMemProducts() *memProducts {
	return &memProducts{byUID: map[string]*models.FishProduct{}, owners: map[string]*models.Seller{}}
}

func (m *memProducts) Create(_ context.Context, p *models.FishProduct, sellerUID string) error {
	m.byUID[p.UID] = p
	m.owners[p.UID] = &models.Seller{UID: sellerUID}
	return nil
}

func (m *memProducts) GetByUID(_ context.Context, uid string) (*models.FishProduct, error) {
	if p, ok := m.byUID[uid]; ok {
		return p, nil
	}
	return nil, graph.ErrNotFound
}

func (m *memProducts) List(context.Context, repo.ProductFilter) ([]models.FishProduct, error) {
	out := make([]models.FishProduct, 0, len(m.byUID))
	for _, p := range m.byUID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memProducts) SellerOf(_ context.Context, productUID string) (*models.Seller, error) {
	if s, ok := m.owners[productUID]; ok {
		return s, nil
	}
	return nil, graph.ErrNotFound
}

func (m *memProducts) Update(_ context.Context, uid string, fields map[string]any) (*models.FishProduct, error) {
	p, ok := m.byUID[uid]
	if !ok {
		return nil, graph.ErrNotFound
	}
	if v, ok := fields["price"].(float64); ok {
		p.Price = v
	}
	if v, ok := fields["quantity"].(int); ok {
		p.Quantity = v
	}
	return p, nil
}

func (m *memProducts) Delete(_ context.Context, uid string) error {
	if _, ok := m.byUID[uid]; !ok {
		return graph.ErrNotFound
	}
	delete(m.byUID, uid)
	delete(m.owners, uid)
	return nil
}

func withSeller(c echo.Context, s *models.Seller) {
	c.Set(auth.CtxSeller, s)
}

func TestProductCreate(t *testing.T) {
	products := newMemProducts()
	h := &ProductHandler{Products: products}

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/fish_products", map[string]any{
		"name":     "Bangus",
		"type":     "Saltwater",
		"price":    150.0,
		"quantity": 50,
	})
	withSeller(c, &models.Seller{UID: "seller-1", Name: "Mang Ben"})

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.FishProduct
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "seller-1", created.SellerUID)
	assert.NotEmpty(t, created.UID)
}

func TestProductCreateRejectsNonPositivePrice(t *testing.T) {
	for _, price := range []float64{0, -5} {
		products := newMemProducts()
		h := &ProductHandler{Products: products}

		c, rec := newJSONContext(t, http.MethodPost, "/api/v1/fish_products", map[string]any{
			"name":     "Bangus",
			"price":    price,
			"quantity": 50,
		})
		withSeller(c, &models.Seller{UID: "seller-1"})

		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, products.byUID)
	}
}

func TestProductUpdateRejectsNonPositivePrice(t *testing.T) {
	products := newMemProducts()
	products.byUID["prod-1"] = &models.FishProduct{UID: "prod-1", Name: "Bangus", Price: 150}
	products.owners["prod-1"] = &models.Seller{UID: "seller-1"}
	h := &ProductHandler{Products: products}

	for _, price := range []float64{0, -10} {
		e := echo.New()
		body := map[string]any{"price": price}
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/fish_products/prod-1", bytes.NewReader(data))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("uid")
		c.SetParamValues("prod-1")
		withSeller(c, &models.Seller{UID: "seller-1"})

		require.NoError(t, h.Update(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.InDelta(t, 150.0, products.byUID["prod-1"].Price, 1e-9)
	}
}

func TestProductUpdateForbiddenForOtherSeller(t *testing.T) {
	products := newMemProducts()
	products.byUID["prod-1"] = &models.FishProduct{UID: "prod-1", Name: "Bangus", Price: 150}
	products.owners["prod-1"] = &models.Seller{UID: "seller-1"}
	h := &ProductHandler{Products: products}

	e := echo.New()
	data, err := json.Marshal(map[string]any{"price": 200.0})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/fish_products/prod-1", bytes.NewReader(data))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("uid")
	c.SetParamValues("prod-1")
	withSeller(c, &models.Seller{UID: "seller-2"})

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
