package repo

import (
	"context"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/models"
)

type Messages struct {
	DB graph.Runner
}

func (r *Messages) Create(ctx context.Context, m *models.Message) error {
	const q = `
CREATE (m:Message {
	uid: $uid, sender_uid: $sender_uid, sender_type: $sender_type,
	recipient_uid: $recipient_uid, recipient_type: $recipient_type,
	message: $message, created_at: $created_at
})
RETURN m`
	_, err := r.DB.Run(ctx, q, map[string]any{
		"uid":            m.UID,
		"sender_uid":     m.SenderUID,
		"sender_type":    m.SenderType,
		"recipient_uid":  m.RecipientUID,
		"recipient_type": m.RecipientType,
		"message":        m.Message,
		"created_at":     fmtTime(m.CreatedAt),
	})
	return err
}

// Between returns the full conversation between two users, oldest first. The
// pair is unordered: both directions are included.
func (r *Messages) Between(ctx context.Context, user1UID, user2UID string) ([]models.Message, error) {
	const q = `
MATCH (m:Message)
WHERE (m.sender_uid = $user1 AND m.recipient_uid = $user2)
   OR (m.sender_uid = $user2 AND m.recipient_uid = $user1)
RETURN m
ORDER BY m.created_at ASC`
	result, err := graph.ReadWithRetry(ctx, r.DB, q, map[string]any{"user1": user1UID, "user2": user2UID})
	if err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(result.Records))
	for _, record := range result.Records {
		if node, ok := recordNode(record, "m"); ok {
			messages = append(messages, *messageFromNode(node))
		}
	}
	return messages, nil
}

// Conversations lists the user's conversation partners with the latest
// message each. Partner names are resolved by the caller.
func (r *Messages) Conversations(ctx context.Context, userUID string) ([]models.Conversation, error) {
	const q = `
MATCH (m:Message)
WHERE m.sender_uid = $uid OR m.recipient_uid = $uid
WITH m,
     CASE WHEN m.sender_uid = $uid THEN m.recipient_uid ELSE m.sender_uid END AS other_uid,
     CASE WHEN m.sender_uid = $uid THEN m.recipient_type ELSE m.sender_type END AS other_type
ORDER BY m.created_at DESC
WITH other_uid, other_type, collect(m)[0] AS last_message
RETURN other_uid, other_type,
       last_message.message AS last_message_text,
       last_message.created_at AS last_message_time`
	result, err := graph.ReadWithRetry(ctx, r.DB, q, map[string]any{"uid": userUID})
	if err != nil {
		return nil, err
	}

	conversations := make([]models.Conversation, 0, len(result.Records))
	for _, record := range result.Records {
		var c models.Conversation
		if v, ok := record.Get("other_uid"); ok {
			c.OtherUserUID = asString(v)
		}
		if v, ok := record.Get("other_type"); ok {
			c.OtherUserType = asString(v)
		}
		if v, ok := record.Get("last_message_text"); ok {
			c.LastMessage = asString(v)
		}
		if v, ok := record.Get("last_message_time"); ok {
			c.LastMessageTime = parseTime(v)
		}
		conversations = append(conversations, c)
	}
	return conversations, nil
}
