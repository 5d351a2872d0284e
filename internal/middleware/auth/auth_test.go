package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/models"
	"github.com/isdamarket/fish_market/internal/token"
)

type staticBuyers struct{ buyer *models.Buyer }

func (s staticBuyers) GetByUID(_ context.Context, uid string) (*models.Buyer, error) {
	if s.buyer != nil && s.buyer.UID == uid {
		return s.buyer, nil
	}
	return nil, graph.ErrNotFound
}

type staticSellers struct{ seller *models.Seller }

func (s staticSellers) GetByUID(_ context.Context, uid string) (*models.Seller, error) {
	if s.seller != nil && s.seller.UID == uid {
		return s.seller, nil
	}
	return nil, graph.ErrNotFound
}

var testSecret = []byte("test-secret")

func newGuard() *Guard {
	return &Guard{
		Secret:  testSecret,
		Buyers:  staticBuyers{buyer: &models.Buyer{UID: "buyer-1", Name: "Ana"}},
		Sellers: staticSellers{seller: &models.Seller{UID: "seller-1", Name: "Mang Ben"}},
	}
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, c, handler(c)
}

func TestRequireBuyerAcceptsValidToken(t *testing.T) {
	tok, err := token.Sign(testSecret, "buyer-1", "ana@example.com", "buyer", time.Minute)
	require.NoError(t, err)

	_, c, err := doRequest(t, newGuard().RequireBuyer, "Bearer "+tok)
	require.NoError(t, err)
	buyer := BuyerFrom(c)
	require.NotNil(t, buyer)
	assert.Equal(t, "Ana", buyer.Name)
}

func TestRequireBuyerRejectsSellerToken(t *testing.T) {
	tok, err := token.Sign(testSecret, "seller-1", "ben@example.com", "seller", time.Minute)
	require.NoError(t, err)

	_, _, err = doRequest(t, newGuard().RequireBuyer, "Bearer "+tok)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireSellerAcceptsValidToken(t *testing.T) {
	tok, err := token.Sign(testSecret, "seller-1", "ben@example.com", "seller", time.Minute)
	require.NoError(t, err)

	_, c, err := doRequest(t, newGuard().RequireSeller, "Bearer "+tok)
	require.NoError(t, err)
	seller := SellerFrom(c)
	require.NotNil(t, seller)
	assert.Equal(t, "Mang Ben", seller.Name)
}

func TestGuardRejectsMissingHeader(t *testing.T) {
	_, _, err := doRequest(t, newGuard().RequireBuyer, "")
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestGuardRejectsBadToken(t *testing.T) {
	_, _, err := doRequest(t, newGuard().RequireBuyer, "Bearer not-a-token")
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestGuardRejectsDeletedUser(t *testing.T) {
	tok, err := token.Sign(testSecret, "buyer-gone", "x@example.com", "buyer", time.Minute)
	require.NoError(t, err)

	_, _, err = doRequest(t, newGuard().RequireBuyer, "Bearer "+tok)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}
