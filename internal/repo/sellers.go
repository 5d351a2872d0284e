package repo

import (
	"context"
	"time"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/models"
)

type Sellers struct {
	DB graph.Runner
}

func (r *Sellers) Create(ctx context.Context, s *models.Seller) error {
	const q = `
CREATE (s:Seller {
	uid: $uid, name: $name, email: $email, contact_number: $contact_number,
	password_hash: $password_hash, profile_picture: $profile_picture,
	average_rating: 0.0, review_count: 0,
	created_at: $created_at, updated_at: $updated_at
})
RETURN s`
	_, err := r.DB.Run(ctx, q, map[string]any{
		"uid":             s.UID,
		"name":            s.Name,
		"email":           s.Email,
		"contact_number":  s.ContactNumber,
		"password_hash":   s.PasswordHash,
		"profile_picture": s.ProfilePicture,
		"created_at":      fmtTime(s.CreatedAt),
		"updated_at":      fmtTime(s.UpdatedAt),
	})
	return err
}

func (r *Sellers) GetByUID(ctx context.Context, uid string) (*models.Seller, error) {
	result, err := graph.ReadWithRetry(ctx, r.DB, `MATCH (s:Seller {uid: $uid}) RETURN s`, map[string]any{"uid": uid})
	if err != nil {
		return nil, err
	}
	node, err := singleNode(result, "s")
	if err != nil {
		return nil, err
	}
	return sellerFromNode(node), nil
}

func (r *Sellers) GetByEmail(ctx context.Context, email string) (*models.Seller, error) {
	result, err := graph.ReadWithRetry(ctx, r.DB, `MATCH (s:Seller {email: $email}) RETURN s`, map[string]any{"email": email})
	if err != nil {
		return nil, err
	}
	node, err := singleNode(result, "s")
	if err != nil {
		return nil, err
	}
	return sellerFromNode(node), nil
}

func (r *Sellers) List(ctx context.Context) ([]models.Seller, error) {
	result, err := graph.ReadWithRetry(ctx, r.DB, `MATCH (s:Seller) RETURN s ORDER BY s.created_at`, nil)
	if err != nil {
		return nil, err
	}

	sellers := make([]models.Seller, 0, len(result.Records))
	for _, record := range result.Records {
		node, ok := recordNode(record, "s")
		if !ok {
			continue
		}
		s := sellerFromNode(node)
		if !validEmail(s.Email) {
			continue
		}
		sellers = append(sellers, *s)
	}
	return sellers, nil
}

func (r *Sellers) Update(ctx context.Context, uid string, fields map[string]any) (*models.Seller, error) {
	const q = `
MATCH (s:Seller {uid: $uid})
SET s += $fields, s.updated_at = $now
RETURN s`
	result, err := r.DB.Run(ctx, q, map[string]any{
		"uid":    uid,
		"fields": fields,
		"now":    fmtTime(time.Now()),
	})
	if err != nil {
		return nil, err
	}
	node, err := singleNode(result, "s")
	if err != nil {
		return nil, err
	}
	return sellerFromNode(node), nil
}

func (r *Sellers) Delete(ctx context.Context, uid string) error {
	result, err := r.DB.Run(ctx, `MATCH (s:Seller {uid: $uid}) DETACH DELETE s`, map[string]any{"uid": uid})
	if err != nil {
		return err
	}
	if result.Summary.Counters().NodesDeleted() == 0 {
		return graph.ErrNotFound
	}
	return nil
}
