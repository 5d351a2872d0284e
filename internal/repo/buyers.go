package repo

import (
	"context"
	"time"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/models"
)

type Buyers struct {
	DB graph.Runner
}

func (r *Buyers) Create(ctx context.Context, b *models.Buyer) error {
	const q = `
CREATE (b:Buyer {
	uid: $uid, name: $name, email: $email, contact_number: $contact_number,
	password_hash: $password_hash, profile_picture: $profile_picture,
	created_at: $created_at, updated_at: $updated_at
})
RETURN b`
	_, err := r.DB.Run(ctx, q, map[string]any{
		"uid":             b.UID,
		"name":            b.Name,
		"email":           b.Email,
		"contact_number":  b.ContactNumber,
		"password_hash":   b.PasswordHash,
		"profile_picture": b.ProfilePicture,
		"created_at":      fmtTime(b.CreatedAt),
		"updated_at":      fmtTime(b.UpdatedAt),
	})
	return err
}

func (r *Buyers) GetByUID(ctx context.Context, uid string) (*models.Buyer, error) {
	result, err := graph.ReadWithRetry(ctx, r.DB, `MATCH (b:Buyer {uid: $uid}) RETURN b`, map[string]any{"uid": uid})
	if err != nil {
		return nil, err
	}
	node, err := singleNode(result, "b")
	if err != nil {
		return nil, err
	}
	return buyerFromNode(node), nil
}

func (r *Buyers) GetByEmail(ctx context.Context, email string) (*models.Buyer, error) {
	result, err := graph.ReadWithRetry(ctx, r.DB, `MATCH (b:Buyer {email: $email}) RETURN b`, map[string]any{"email": email})
	if err != nil {
		return nil, err
	}
	node, err := singleNode(result, "b")
	if err != nil {
		return nil, err
	}
	return buyerFromNode(node), nil
}

func (r *Buyers) List(ctx context.Context) ([]models.Buyer, error) {
	result, err := graph.ReadWithRetry(ctx, r.DB, `MATCH (b:Buyer) RETURN b ORDER BY b.created_at`, nil)
	if err != nil {
		return nil, err
	}

	buyers := make([]models.Buyer, 0, len(result.Records))
	for _, record := range result.Records {
		node, ok := recordNode(record, "b")
		if !ok {
			continue
		}
		b := buyerFromNode(node)
		if !validEmail(b.Email) {
			continue
		}
		buyers = append(buyers, *b)
	}
	return buyers, nil
}

// Update applies only the given properties and bumps updated_at.
func (r *Buyers) Update(ctx context.Context, uid string, fields map[string]any) (*models.Buyer, error) {
	const q = `
MATCH (b:Buyer {uid: $uid})
SET b += $fields, b.updated_at = $now
RETURN b`
	result, err := r.DB.Run(ctx, q, map[string]any{
		"uid":    uid,
		"fields": fields,
		"now":    fmtTime(time.Now()),
	})
	if err != nil {
		return nil, err
	}
	node, err := singleNode(result, "b")
	if err != nil {
		return nil, err
	}
	return buyerFromNode(node), nil
}

func (r *Buyers) Delete(ctx context.Context, uid string) error {
	result, err := r.DB.Run(ctx, `MATCH (b:Buyer {uid: $uid}) DETACH DELETE b`, map[string]any{"uid": uid})
	if err != nil {
		return err
	}
	if result.Summary.Counters().NodesDeleted() == 0 {
		return graph.ErrNotFound
	}
	return nil
}
