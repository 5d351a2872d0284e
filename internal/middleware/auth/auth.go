// Package auth guards routes with Bearer tokens. RequireBuyer and
// RequireSeller verify the token, check the user type and load the
// matching node so handlers can read it from the echo context.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/isdamarket/fish_market/internal/models"
	"github.com/isdamarket/fish_market/internal/token"
)

const (
	CtxBuyer  = "buyer"
	CtxSeller = "seller"
)

type BuyerResolver interface {
	GetByUID(ctx context.Context, uid string) (*models.Buyer, error)
}

type SellerResolver interface {
	GetByUID(ctx context.Context, uid string) (*models.Seller, error)
}

type Guard struct {
	Secret  []byte
	Buyers  BuyerResolver
	Sellers SellerResolver
}

func (g *Guard) RequireBuyer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := g.claims(c)
		if err != nil {
			return err
		}
		if claims.UserType != "buyer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "buyer token required")
		}
		buyer, err := g.Buyers.GetByUID(c.Request().Context(), claims.UID)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
		c.Set(CtxBuyer, buyer)
		return next(c)
	}
}

func (g *Guard) RequireSeller(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := g.claims(c)
		if err != nil {
			return err
		}
		if claims.UserType != "seller" {
			return echo.NewHTTPError(http.StatusUnauthorized, "seller token required")
		}
		seller, err := g.Sellers.GetByUID(c.Request().Context(), claims.UID)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
		c.Set(CtxSeller, seller)
		return next(c)
	}
}

func (g *Guard) claims(c echo.Context) (*token.Claims, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}
	claims, err := token.Parse(g.Secret, raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// BuyerFrom returns the buyer a guard stored on the context.
func BuyerFrom(c echo.Context) *models.Buyer {
	b, _ := c.Get(CtxBuyer).(*models.Buyer)
	return b
}

// SellerFrom returns the seller a guard stored on the context.
func SellerFrom(c echo.Context) *models.Seller {
	s, _ := c.Get(CtxSeller).(*models.Seller)
	return s
}
