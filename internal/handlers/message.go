package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/isdamarket/fish_market/internal/models"
)

const notificationPreviewLen = 50

type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	Between(ctx context.Context, user1UID, user2UID string) ([]models.Message, error)
	Conversations(ctx context.Context, userUID string) ([]models.Conversation, error)
}

type BuyerResolver interface {
	GetByUID(ctx context.Context, uid string) (*models.Buyer, error)
}

type SellerResolver interface {
	GetByUID(ctx context.Context, uid string) (*models.Seller, error)
}

type Notifier interface {
	Enqueue(n models.Notification)
}

type MessageHandler struct {
	Messages MessageStore
	Buyers   BuyerResolver
	Sellers  SellerResolver
	Notify   Notifier
}

func (h *MessageHandler) resolveName(ctx context.Context, uid, userType string) string {
	switch userType {
	case models.RecipientBuyer:
		if b, err := h.Buyers.GetByUID(ctx, uid); err == nil {
			return b.Name
		}
	case models.RecipientSeller:
		if s, err := h.Sellers.GetByUID(ctx, uid); err == nil {
			return s.Name
		}
	}
	return ""
}

func (h *MessageHandler) Send(c echo.Context) error {
	var req struct {
		SenderUID     string `json:"sender_uid"`
		SenderType    string `json:"sender_type"`
		RecipientUID  string `json:"recipient_uid"`
		RecipientType string `json:"recipient_type"`
		Message       string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.SenderUID == "" || req.RecipientUID == "" || req.Message == "" {
		return errorResponse(c, http.StatusBadRequest, "sender_uid, recipient_uid and message are required")
	}
	if req.SenderType != models.RecipientBuyer && req.SenderType != models.RecipientSeller {
		return errorResponse(c, http.StatusBadRequest, "sender_type must be buyer or seller")
	}
	if req.RecipientType != models.RecipientBuyer && req.RecipientType != models.RecipientSeller {
		return errorResponse(c, http.StatusBadRequest, "recipient_type must be buyer or seller")
	}

	ctx := c.Request().Context()
	msg := &models.Message{
		UID:           uuid.NewString(),
		SenderUID:     req.SenderUID,
		SenderType:    req.SenderType,
		RecipientUID:  req.RecipientUID,
		RecipientType: req.RecipientType,
		Message:       req.Message,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.Messages.Create(ctx, msg); err != nil {
		return graphError(c, err)
	}

	senderName := h.resolveName(ctx, req.SenderUID, req.SenderType)
	if senderName == "" {
		senderName = "Someone"
	}
	preview := req.Message
	if runes := []rune(preview); len(runes) > notificationPreviewLen {
		preview = string(runes[:notificationPreviewLen])
	}
	h.Notify.Enqueue(models.Notification{
		RecipientUID:  req.RecipientUID,
		RecipientType: req.RecipientType,
		Type:          "new_message",
		Message:       senderName + ": " + preview,
	})

	return c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) Between(c echo.Context) error {
	messages, err := h.Messages.Between(c.Request().Context(), c.Param("user1_uid"), c.Param("user2_uid"))
	if err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, messages)
}

func (h *MessageHandler) Conversations(c echo.Context) error {
	ctx := c.Request().Context()
	conversations, err := h.Messages.Conversations(ctx, c.Param("user_uid"))
	if err != nil {
		return graphError(c, err)
	}
	for i := range conversations {
		conversations[i].OtherUserName = h.resolveName(ctx, conversations[i].OtherUserUID, conversations[i].OtherUserType)
	}
	return c.JSON(http.StatusOK, conversations)
}
