// Package repo implements the Cypher-backed repositories for the graph
// entities and their relationships.
package repo

import (
	"regexp"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/models"
)

// timeLayout is fixed-width so lexicographic ORDER BY on stored timestamps
// matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	for _, layout := range []string{timeLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Tolerates records written before validation was in place: listings drop
// rows whose email does not look like local@domain.tld.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[A-Za-z]{2,}$`)

func validEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func propString(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func propFloat(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func propInt(props map[string]any, key string) int {
	switch v := props[key].(type) {
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func propBool(props map[string]any, key string) bool {
	if v, ok := props[key].(bool); ok {
		return v
	}
	return false
}

func propTime(props map[string]any, key string) time.Time {
	return parseTime(props[key])
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// recordNode extracts a node value from a record, tolerating OPTIONAL MATCH
// misses.
func recordNode(record *neo4j.Record, key string) (neo4j.Node, bool) {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return neo4j.Node{}, false
	}
	node, ok := v.(neo4j.Node)
	return node, ok
}

// singleNode returns the one node bound to key, or graph.ErrNotFound when
// the query matched nothing.
func singleNode(result *neo4j.EagerResult, key string) (neo4j.Node, error) {
	if len(result.Records) == 0 {
		return neo4j.Node{}, graph.ErrNotFound
	}
	node, ok := recordNode(result.Records[0], key)
	if !ok {
		return neo4j.Node{}, graph.ErrNotFound
	}
	return node, nil
}

func buyerFromNode(n neo4j.Node) *models.Buyer {
	return &models.Buyer{
		UID:            propString(n.Props, "uid"),
		Name:           propString(n.Props, "name"),
		Email:          propString(n.Props, "email"),
		ContactNumber:  propString(n.Props, "contact_number"),
		PasswordHash:   propString(n.Props, "password_hash"),
		ProfilePicture: propString(n.Props, "profile_picture"),
		CreatedAt:      propTime(n.Props, "created_at"),
		UpdatedAt:      propTime(n.Props, "updated_at"),
	}
}

func sellerFromNode(n neo4j.Node) *models.Seller {
	return &models.Seller{
		UID:            propString(n.Props, "uid"),
		Name:           propString(n.Props, "name"),
		Email:          propString(n.Props, "email"),
		ContactNumber:  propString(n.Props, "contact_number"),
		PasswordHash:   propString(n.Props, "password_hash"),
		ProfilePicture: propString(n.Props, "profile_picture"),
		AverageRating:  propFloat(n.Props, "average_rating"),
		ReviewCount:    propInt(n.Props, "review_count"),
		CreatedAt:      propTime(n.Props, "created_at"),
		UpdatedAt:      propTime(n.Props, "updated_at"),
	}
}

func productFromNode(n neo4j.Node) *models.FishProduct {
	return &models.FishProduct{
		UID:         propString(n.Props, "uid"),
		Name:        propString(n.Props, "name"),
		Type:        propString(n.Props, "type"),
		Price:       propFloat(n.Props, "price"),
		Quantity:    propInt(n.Props, "quantity"),
		Description: propString(n.Props, "description"),
		Image:       propString(n.Props, "image"),
		CreatedAt:   propTime(n.Props, "created_at"),
		UpdatedAt:   propTime(n.Props, "updated_at"),
	}
}

func orderFromNode(n neo4j.Node) *models.Order {
	return &models.Order{
		UID:        propString(n.Props, "uid"),
		Quantity:   propInt(n.Props, "quantity"),
		TotalPrice: propFloat(n.Props, "total_price"),
		Status:     propString(n.Props, "status"),
		CreatedAt:  propTime(n.Props, "created_at"),
		UpdatedAt:  propTime(n.Props, "updated_at"),
	}
}

func notificationFromNode(n neo4j.Node) *models.Notification {
	return &models.Notification{
		UID:           propString(n.Props, "uid"),
		RecipientUID:  propString(n.Props, "recipient_uid"),
		RecipientType: propString(n.Props, "recipient_type"),
		Type:          propString(n.Props, "type"),
		Message:       propString(n.Props, "message"),
		Read:          propBool(n.Props, "read"),
		CreatedAt:     propTime(n.Props, "created_at"),
	}
}

func messageFromNode(n neo4j.Node) *models.Message {
	return &models.Message{
		UID:           propString(n.Props, "uid"),
		SenderUID:     propString(n.Props, "sender_uid"),
		SenderType:    propString(n.Props, "sender_type"),
		RecipientUID:  propString(n.Props, "recipient_uid"),
		RecipientType: propString(n.Props, "recipient_type"),
		Message:       propString(n.Props, "message"),
		CreatedAt:     propTime(n.Props, "created_at"),
	}
}

func reviewFromNode(n neo4j.Node) *models.Review {
	return &models.Review{
		UID:       propString(n.Props, "uid"),
		BuyerUID:  propString(n.Props, "buyer_uid"),
		BuyerName: propString(n.Props, "buyer_name"),
		SellerUID: propString(n.Props, "seller_uid"),
		OrderUID:  propString(n.Props, "order_uid"),
		Rating:    propInt(n.Props, "rating"),
		Comment:   propString(n.Props, "comment"),
		CreatedAt: propTime(n.Props, "created_at"),
	}
}
