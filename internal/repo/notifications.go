package repo

import (
	"context"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/models"
)

type Notifications struct {
	DB graph.Runner
}

func (r *Notifications) Create(ctx context.Context, n *models.Notification) error {
	const q = `
CREATE (n:Notification {
	uid: $uid, recipient_uid: $recipient_uid, recipient_type: $recipient_type,
	type: $type, message: $message, read: false, created_at: $created_at
})
RETURN n`
	_, err := r.DB.Run(ctx, q, map[string]any{
		"uid":            n.UID,
		"recipient_uid":  n.RecipientUID,
		"recipient_type": n.RecipientType,
		"type":           n.Type,
		"message":        n.Message,
		"created_at":     fmtTime(n.CreatedAt),
	})
	return err
}

func (r *Notifications) ListByRecipient(ctx context.Context, recipientUID, recipientType string) ([]models.Notification, error) {
	const q = `
MATCH (n:Notification {recipient_uid: $recipient_uid, recipient_type: $recipient_type})
RETURN n
ORDER BY n.created_at DESC`
	result, err := graph.ReadWithRetry(ctx, r.DB, q, map[string]any{
		"recipient_uid":  recipientUID,
		"recipient_type": recipientType,
	})
	if err != nil {
		return nil, err
	}

	notifications := make([]models.Notification, 0, len(result.Records))
	for _, record := range result.Records {
		if node, ok := recordNode(record, "n"); ok {
			notifications = append(notifications, *notificationFromNode(node))
		}
	}
	return notifications, nil
}

func (r *Notifications) MarkRead(ctx context.Context, uid string) error {
	const q = `MATCH (n:Notification {uid: $uid}) SET n.read = true RETURN n`
	result, err := r.DB.Run(ctx, q, map[string]any{"uid": uid})
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		return graph.ErrNotFound
	}
	return nil
}

// MarkAllRead flips every unread flag for one recipient and reports how many
// notifications were touched.
func (r *Notifications) MarkAllRead(ctx context.Context, recipientUID, recipientType string) (int, error) {
	const q = `
MATCH (n:Notification {recipient_uid: $recipient_uid, recipient_type: $recipient_type})
SET n.read = true
RETURN count(n) AS count`
	result, err := r.DB.Run(ctx, q, map[string]any{
		"recipient_uid":  recipientUID,
		"recipient_type": recipientType,
	})
	if err != nil {
		return 0, err
	}
	if len(result.Records) == 0 {
		return 0, nil
	}
	v, _ := result.Records[0].Get("count")
	return asInt(v), nil
}

func (r *Notifications) Delete(ctx context.Context, uid string) error {
	result, err := r.DB.Run(ctx, `MATCH (n:Notification {uid: $uid}) DELETE n`, map[string]any{"uid": uid})
	if err != nil {
		return err
	}
	if result.Summary.Counters().NodesDeleted() == 0 {
		return graph.ErrNotFound
	}
	return nil
}
