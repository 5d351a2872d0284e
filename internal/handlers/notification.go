package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/isdamarket/fish_market/internal/models"
)

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipientUID, recipientType string) ([]models.Notification, error)
	MarkRead(ctx context.Context, uid string) error
	MarkAllRead(ctx context.Context, recipientUID, recipientType string) (int, error)
	Delete(ctx context.Context, uid string) error
}

type NotificationHandler struct {
	Notifications NotificationStore
}

func (h *NotificationHandler) Create(c echo.Context) error {
	var req struct {
		RecipientUID  string `json:"recipient_uid"`
		RecipientType string `json:"recipient_type"`
		Type          string `json:"type"`
		Message       string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.RecipientUID == "" || req.Type == "" {
		return errorResponse(c, http.StatusBadRequest, "recipient_uid and type are required")
	}
	if req.RecipientType != models.RecipientBuyer && req.RecipientType != models.RecipientSeller {
		return errorResponse(c, http.StatusBadRequest, "recipient_type must be buyer or seller")
	}

	notif := &models.Notification{
		UID:           uuid.NewString(),
		RecipientUID:  req.RecipientUID,
		RecipientType: req.RecipientType,
		Type:          req.Type,
		Message:       req.Message,
		Read:          false,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.Notifications.Create(c.Request().Context(), notif); err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusCreated, notif)
}

func (h *NotificationHandler) ListBuyer(c echo.Context) error {
	return h.list(c, c.Param("uid"), models.RecipientBuyer)
}

func (h *NotificationHandler) ListSeller(c echo.Context) error {
	return h.list(c, c.Param("uid"), models.RecipientSeller)
}

func (h *NotificationHandler) list(c echo.Context, uid, recipientType string) error {
	notifications, err := h.Notifications.ListByRecipient(c.Request().Context(), uid, recipientType)
	if err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	if err := h.Notifications.MarkRead(c.Request().Context(), c.Param("uid")); err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, Response{Status: "ok", Message: "notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	recipientType := c.QueryParam("recipient_type")
	if recipientType != models.RecipientBuyer && recipientType != models.RecipientSeller {
		return errorResponse(c, http.StatusBadRequest, "recipient_type must be buyer or seller")
	}
	count, err := h.Notifications.MarkAllRead(c.Request().Context(), c.Param("uid"), recipientType)
	if err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"count":  count,
	})
}

func (h *NotificationHandler) Delete(c echo.Context) error {
	if err := h.Notifications.Delete(c.Request().Context(), c.Param("uid")); err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, Response{Status: "ok", Message: "notification deleted"})
}
