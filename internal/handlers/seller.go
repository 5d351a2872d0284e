package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/hash"
	"github.com/isdamarket/fish_market/internal/middleware/auth"
	"github.com/isdamarket/fish_market/internal/models"
	"github.com/isdamarket/fish_market/internal/mykafka"
)

type SellerStore interface {
	Create(ctx context.Context, s *models.Seller) error
	GetByUID(ctx context.Context, uid string) (*models.Seller, error)
	GetByEmail(ctx context.Context, email string) (*models.Seller, error)
	List(ctx context.Context) ([]models.Seller, error)
	Update(ctx context.Context, uid string, fields map[string]any) (*models.Seller, error)
	Delete(ctx context.Context, uid string) error
}

type SellerHandler struct {
	Sellers  SellerStore
	Producer *mykafka.Producer
}

func (h *SellerHandler) Register(c echo.Context) error {
	var req struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		ContactNumber  string `json:"contact_number"`
		Password       string `json:"password"`
		ProfilePicture string `json:"profile_picture"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return errorResponse(c, http.StatusBadRequest, "name, email and password are required")
	}

	ctx := c.Request().Context()
	if _, err := h.Sellers.GetByEmail(ctx, req.Email); err == nil {
		return errorResponse(c, http.StatusConflict, "email already registered")
	} else if !errors.Is(err, graph.ErrNotFound) {
		return graphError(c, err)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	now := time.Now().UTC()
	seller := &models.Seller{
		UID:            uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		ContactNumber:  req.ContactNumber,
		PasswordHash:   pwHash,
		ProfilePicture: req.ProfilePicture,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.Sellers.Create(ctx, seller); err != nil {
		return graphError(c, err)
	}

	publish(c, h.Producer, "user_events", seller.UID, map[string]any{
		"event":     "registered",
		"uid":       seller.UID,
		"user_type": "seller",
	})

	return c.JSON(http.StatusCreated, seller)
}

func (h *SellerHandler) List(c echo.Context) error {
	sellers, err := h.Sellers.List(c.Request().Context())
	if err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, sellers)
}

func (h *SellerHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, auth.SellerFrom(c))
}

func (h *SellerHandler) Get(c echo.Context) error {
	seller, err := h.Sellers.GetByUID(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, seller)
}

func (h *SellerHandler) Update(c echo.Context) error {
	var req struct {
		Name           *string `json:"name"`
		Email          *string `json:"email"`
		ContactNumber  *string `json:"contact_number"`
		Password       *string `json:"password"`
		ProfilePicture *string `json:"profile_picture"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	uid := c.Param("uid")
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil {
		if other, err := h.Sellers.GetByEmail(ctx, *req.Email); err == nil && other.UID != uid {
			return errorResponse(c, http.StatusConflict, "email already registered")
		} else if err != nil && !errors.Is(err, graph.ErrNotFound) {
			return graphError(c, err)
		}
		fields["email"] = *req.Email
	}
	if req.ContactNumber != nil {
		fields["contact_number"] = *req.ContactNumber
	}
	if req.ProfilePicture != nil {
		fields["profile_picture"] = *req.ProfilePicture
	}
	if req.Password != nil {
		pwHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			return errorResponse(c, http.StatusInternalServerError, "internal error")
		}
		fields["password_hash"] = pwHash
	}
	if len(fields) == 0 {
		return errorResponse(c, http.StatusBadRequest, "no fields to update")
	}

	seller, err := h.Sellers.Update(ctx, uid, fields)
	if err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, seller)
}

func (h *SellerHandler) Delete(c echo.Context) error {
	uid := c.Param("uid")
	if err := h.Sellers.Delete(c.Request().Context(), uid); err != nil {
		return graphError(c, err)
	}
	publish(c, h.Producer, "user_events", uid, map[string]any{
		"event":     "deleted",
		"uid":       uid,
		"user_type": "seller",
	})
	return c.JSON(http.StatusOK, Response{Status: "ok", Message: "seller deleted"})
}
