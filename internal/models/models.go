package models

import (
	"time"
)

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// OrderStatuses is the full set of accepted order statuses. Any status in
// this set may be applied from any current status; callers are trusted to
// send valid business transitions.
var OrderStatuses = []string{
	StatusPending,
	StatusConfirmed,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func ValidStatus(s string) bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

const (
	RecipientBuyer  = "buyer"
	RecipientSeller = "seller"
)

type Buyer struct {
	UID            string    `json:"uid"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	ContactNumber  string    `json:"contact_number"`
	PasswordHash   string    `json:"-"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Seller struct {
	UID            string    `json:"uid"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	ContactNumber  string    `json:"contact_number"`
	PasswordHash   string    `json:"-"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	AverageRating  float64   `json:"average_rating"`
	ReviewCount    int       `json:"review_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type FishProduct struct {
	UID         string  `json:"uid"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`

	// Denormalized for API responses, not stored on the node.
	SellerUID  string `json:"seller_uid,omitempty"`
	SellerName string `json:"seller_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Order struct {
	UID        string    `json:"uid"`
	Quantity   int       `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OrderDetail is the denormalized order view returned by the API: the order
// node plus the buyer, seller and product it is connected to.
type OrderDetail struct {
	UID             string    `json:"uid"`
	BuyerUID        string    `json:"buyer_uid"`
	BuyerName       string    `json:"buyer_name"`
	BuyerContact    string    `json:"buyer_contact"`
	SellerUID       string    `json:"seller_uid"`
	SellerName      string    `json:"seller_name"`
	SellerContact   string    `json:"seller_contact"`
	FishProductUID  string    `json:"fish_product_uid"`
	FishProductName string    `json:"fish_product_name"`
	Quantity        int       `json:"quantity"`
	TotalPrice      float64   `json:"total_price"`
	Status          string    `json:"status"`
	Reviewed        bool      `json:"reviewed"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Notification struct {
	UID           string    `json:"uid"`
	RecipientUID  string    `json:"recipient_uid"`
	RecipientType string    `json:"recipient_type"`
	Type          string    `json:"type"`
	Message       string    `json:"message"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}

type Message struct {
	UID           string    `json:"uid"`
	SenderUID     string    `json:"sender_uid"`
	SenderType    string    `json:"sender_type"`
	RecipientUID  string    `json:"recipient_uid"`
	RecipientType string    `json:"recipient_type"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}

// Conversation summarizes the latest exchange with one partner.
type Conversation struct {
	OtherUserUID    string    `json:"other_user_uid"`
	OtherUserName   string    `json:"other_user_name"`
	OtherUserType   string    `json:"other_user_type"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
}

type Review struct {
	UID       string    `json:"uid"`
	BuyerUID  string    `json:"buyer_uid"`
	BuyerName string    `json:"buyer_name"`
	SellerUID string    `json:"seller_uid"`
	OrderUID  string    `json:"order_uid"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
