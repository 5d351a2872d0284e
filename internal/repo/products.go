package repo

import (
	"context"
	"strings"
	"time"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/models"
)

type Products struct {
	DB graph.Runner
}

// ProductFilter narrows List results. Matching happens client-side: name and
// type are case-insensitive substring matches, prices are inclusive bounds.
type ProductFilter struct {
	Name      string
	Type      string
	MinPrice  *float64
	MaxPrice  *float64
	SellerUID string
}

func (f ProductFilter) match(p models.FishProduct) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Type != "" && !strings.Contains(strings.ToLower(p.Type), strings.ToLower(f.Type)) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.SellerUID != "" && p.SellerUID != f.SellerUID {
		return false
	}
	return true
}

// Create stores the product and its SOLD_BY edge in one statement. A missing
// seller yields graph.ErrNotFound.
func (r *Products) Create(ctx context.Context, p *models.FishProduct, sellerUID string) error {
	const q = `
MATCH (s:Seller {uid: $seller_uid})
CREATE (p:FishProduct {
	uid: $uid, name: $name, type: $type, price: $price, quantity: $quantity,
	description: $description, image: $image,
	created_at: $created_at, updated_at: $updated_at
})
CREATE (p)-[:SOLD_BY]->(s)
RETURN p, s.uid AS seller_uid, s.name AS seller_name`
	result, err := r.DB.Run(ctx, q, map[string]any{
		"seller_uid":  sellerUID,
		"uid":         p.UID,
		"name":        p.Name,
		"type":        p.Type,
		"price":       p.Price,
		"quantity":    p.Quantity,
		"description": p.Description,
		"image":       p.Image,
		"created_at":  fmtTime(p.CreatedAt),
		"updated_at":  fmtTime(p.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		return graph.ErrNotFound
	}
	p.SellerUID = sellerUID
	if v, ok := result.Records[0].Get("seller_name"); ok {
		p.SellerName = asString(v)
	}
	return nil
}

func (r *Products) GetByUID(ctx context.Context, uid string) (*models.FishProduct, error) {
	const q = `
MATCH (p:FishProduct {uid: $uid})
OPTIONAL MATCH (p)-[:SOLD_BY]->(s:Seller)
RETURN p, s.uid AS seller_uid, s.name AS seller_name`
	result, err := graph.ReadWithRetry(ctx, r.DB, q, map[string]any{"uid": uid})
	if err != nil {
		return nil, err
	}
	node, err := singleNode(result, "p")
	if err != nil {
		return nil, err
	}
	p := productFromNode(node)
	if v, ok := result.Records[0].Get("seller_uid"); ok {
		p.SellerUID = asString(v)
	}
	if v, ok := result.Records[0].Get("seller_name"); ok {
		p.SellerName = asString(v)
	}
	return p, nil
}

func (r *Products) List(ctx context.Context, filter ProductFilter) ([]models.FishProduct, error) {
	const q = `
MATCH (p:FishProduct)
OPTIONAL MATCH (p)-[:SOLD_BY]->(s:Seller)
RETURN p, s.uid AS seller_uid, s.name AS seller_name
ORDER BY p.created_at DESC`
	result, err := graph.ReadWithRetry(ctx, r.DB, q, nil)
	if err != nil {
		return nil, err
	}

	products := make([]models.FishProduct, 0, len(result.Records))
	for _, record := range result.Records {
		node, ok := recordNode(record, "p")
		if !ok {
			continue
		}
		p := productFromNode(node)
		if v, ok := record.Get("seller_uid"); ok {
			p.SellerUID = asString(v)
		}
		if v, ok := record.Get("seller_name"); ok {
			p.SellerName = asString(v)
		}
		if !filter.match(*p) {
			continue
		}
		products = append(products, *p)
	}
	return products, nil
}

// SellerOf resolves the product's SOLD_BY edge.
func (r *Products) SellerOf(ctx context.Context, productUID string) (*models.Seller, error) {
	const q = `MATCH (p:FishProduct {uid: $uid})-[:SOLD_BY]->(s:Seller) RETURN s`
	result, err := graph.ReadWithRetry(ctx, r.DB, q, map[string]any{"uid": productUID})
	if err != nil {
		return nil, err
	}
	node, err := singleNode(result, "s")
	if err != nil {
		return nil, err
	}
	return sellerFromNode(node), nil
}

func (r *Products) Update(ctx context.Context, uid string, fields map[string]any) (*models.FishProduct, error) {
	const q = `
MATCH (p:FishProduct {uid: $uid})
SET p += $fields, p.updated_at = $now
WITH p
OPTIONAL MATCH (p)-[:SOLD_BY]->(s:Seller)
RETURN p, s.uid AS seller_uid, s.name AS seller_name`
	result, err := r.DB.Run(ctx, q, map[string]any{
		"uid":    uid,
		"fields": fields,
		"now":    fmtTime(time.Now()),
	})
	if err != nil {
		return nil, err
	}
	node, err := singleNode(result, "p")
	if err != nil {
		return nil, err
	}
	p := productFromNode(node)
	if v, ok := result.Records[0].Get("seller_uid"); ok {
		p.SellerUID = asString(v)
	}
	if v, ok := result.Records[0].Get("seller_name"); ok {
		p.SellerName = asString(v)
	}
	return p, nil
}

func (r *Products) Delete(ctx context.Context, uid string) error {
	result, err := r.DB.Run(ctx, `MATCH (p:FishProduct {uid: $uid}) DETACH DELETE p`, map[string]any{"uid": uid})
	if err != nil {
		return err
	}
	if result.Summary.Counters().NodesDeleted() == 0 {
		return graph.ErrNotFound
	}
	return nil
}

// RestoreStock returns reserved quantity to the shelf. Unconditional by
// policy: only pending-order deletion calls it.
func (r *Products) RestoreStock(ctx context.Context, uid string, amount int) error {
	const q = `
MATCH (p:FishProduct {uid: $uid})
SET p.quantity = p.quantity + $amount, p.updated_at = $now
RETURN p`
	result, err := r.DB.Run(ctx, q, map[string]any{
		"uid":    uid,
		"amount": amount,
		"now":    fmtTime(time.Now()),
	})
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		return graph.ErrNotFound
	}
	return nil
}
