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

type BuyerStore interface {
	Create(ctx context.Context, b *models.Buyer) error
	GetByUID(ctx context.Context, uid string) (*models.Buyer, error)
	GetByEmail(ctx context.Context, email string) (*models.Buyer, error)
	List(ctx context.Context) ([]models.Buyer, error)
	Update(ctx context.Context, uid string, fields map[string]any) (*models.Buyer, error)
	Delete(ctx context.Context, uid string) error
}

type BuyerHandler struct {
	Buyers   BuyerStore
	Producer *mykafka.Producer
}

func (h *BuyerHandler) Register(c echo.Context) error {
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
	if _, err := h.Buyers.GetByEmail(ctx, req.Email); err == nil {
		return errorResponse(c, http.StatusConflict, "email already registered")
	} else if !errors.Is(err, graph.ErrNotFound) {
		return graphError(c, err)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, "internal error")
	}

	now := time.Now().UTC()
	buyer := &models.Buyer{
		UID:            uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		ContactNumber:  req.ContactNumber,
		PasswordHash:   pwHash,
		ProfilePicture: req.ProfilePicture,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.Buyers.Create(ctx, buyer); err != nil {
		return graphError(c, err)
	}

	publish(c, h.Producer, "user_events", buyer.UID, map[string]any{
		"event":     "registered",
		"uid":       buyer.UID,
		"user_type": "buyer",
	})

	return c.JSON(http.StatusCreated, buyer)
}

func (h *BuyerHandler) List(c echo.Context) error {
	buyers, err := h.Buyers.List(c.Request().Context())
	if err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, buyers)
}

func (h *BuyerHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, auth.BuyerFrom(c))
}

func (h *BuyerHandler) Get(c echo.Context) error {
	buyer, err := h.Buyers.GetByUID(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, buyer)
}

func (h *BuyerHandler) Update(c echo.Context) error {
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
		if other, err := h.Buyers.GetByEmail(ctx, *req.Email); err == nil && other.UID != uid {
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

	buyer, err := h.Buyers.Update(ctx, uid, fields)
	if err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, buyer)
}

func (h *BuyerHandler) Delete(c echo.Context) error {
	uid := c.Param("uid")
	if err := h.Buyers.Delete(c.Request().Context(), uid); err != nil {
		return graphError(c, err)
	}
	publish(c, h.Producer, "user_events", uid, map[string]any{
		"event":     "deleted",
		"uid":       uid,
		"user_type": "buyer",
	})
	return c.JSON(http.StatusOK, Response{Status: "ok", Message: "buyer deleted"})
}
