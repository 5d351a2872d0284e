package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/hash"
	"github.com/isdamarket/fish_market/internal/models"
	"github.com/isdamarket/fish_market/internal/mykafka"
	"github.com/isdamarket/fish_market/internal/token"
)

type BuyerAccounts interface {
	GetByEmail(ctx context.Context, email string) (*models.Buyer, error)
}

type SellerAccounts interface {
	GetByEmail(ctx context.Context, email string) (*models.Seller, error)
}

type AuthHandler struct {
	Buyers    BuyerAccounts
	Sellers   SellerAccounts
	JWTSecret []byte
	TokenTTL  time.Duration
	Producer  *mykafka.Producer
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserType    string `json:"user_type"`
	UID         string `json:"uid"`
}

func (h *AuthHandler) BuyerLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	buyer, err := h.Buyers.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return errorResponse(c, http.StatusUnauthorized, "incorrect email or password")
		}
		return graphError(c, err)
	}
	if !hash.CheckPassword(buyer.PasswordHash, req.Password) {
		return errorResponse(c, http.StatusUnauthorized, "incorrect email or password")
	}

	return h.issue(c, buyer.UID, buyer.Email, "buyer")
}

func (h *AuthHandler) SellerLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	seller, err := h.Sellers.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return errorResponse(c, http.StatusUnauthorized, "incorrect email or password")
		}
		return graphError(c, err)
	}
	if !hash.CheckPassword(seller.PasswordHash, req.Password) {
		return errorResponse(c, http.StatusUnauthorized, "incorrect email or password")
	}

	return h.issue(c, seller.UID, seller.Email, "seller")
}

func (h *AuthHandler) issue(c echo.Context, uid, email, userType string) error {
	tok, err := token.Sign(h.JWTSecret, uid, email, userType, h.TokenTTL)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "could not issue token")
	}

	publish(c, h.Producer, "user_events", uid, map[string]any{
		"event":     "login",
		"uid":       uid,
		"user_type": userType,
	})

	return c.JSON(http.StatusOK, loginResponse{
		AccessToken: tok,
		TokenType:   "bearer",
		UserType:    userType,
		UID:         uid,
	})
}
