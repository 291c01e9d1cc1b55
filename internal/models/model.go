package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingStatus is the lifecycle state of an auction listing.
// Transitions are forward-only: active -> sold | unsold; sold, unsold and
// cancelled are terminal.
type ListingStatus string

const (
	ListingStatusPending   ListingStatus = "pending"
	ListingStatusActive    ListingStatus = "active"
	ListingStatusSold      ListingStatus = "sold"
	ListingStatusUnsold    ListingStatus = "unsold"
	ListingStatusCancelled ListingStatus = "cancelled"
)

// BidStatus tracks a bid through the auction lifecycle. A bid is created
// active, may become overbid when a higher bid lands, and ends won or lost
// at settlement.
type BidStatus string

const (
	BidStatusActive  BidStatus = "active"
	BidStatusOverbid BidStatus = "overbid"
	BidStatusWon     BidStatus = "won"
	BidStatusLost    BidStatus = "lost"
)

// NotificationType enumerates the notification kinds the system emits.
type NotificationType string

const (
	NotificationBidPlaced       NotificationType = "bid_placed"
	NotificationBidOutbid       NotificationType = "bid_outbid"
	NotificationAuctionWon      NotificationType = "auction_won"
	NotificationAuctionEnding   NotificationType = "auction_ending"
	NotificationPaymentReceived NotificationType = "payment_received"
)

// Listing represents an auctioned item with a time-boxed bidding window
type Listing struct {
	ListingID   string `json:"listing_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
	SellerID    string `json:"seller_id"`

	StartPrice   decimal.Decimal  `json:"start_price"`
	CurrentPrice decimal.Decimal  `json:"current_price"`
	MinIncrement decimal.Decimal  `json:"min_increment"`
	BuyNowPrice  *decimal.Decimal `json:"buy_now_price,omitempty"`

	Status ListingStatus `json:"status"`

	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	AutoExtendEnabled bool      `json:"auto_extend_enabled"`
	AutoExtendMinutes int       `json:"auto_extend_minutes"`

	ViewCount  int `json:"view_count"`
	BidCount   int `json:"bid_count"`
	WatchCount int `json:"watch_count"`

	// WinnerID and FinalPrice are set exactly once, by settlement or by a
	// buy-now bid, never mutated afterward.
	WinnerID   string           `json:"winner_id,omitempty"`
	FinalPrice *decimal.Decimal `json:"final_price,omitempty"`

	// Version is the optimistic-concurrency token; every listing update must
	// carry the version it read, and the store rejects stale writes.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"created_at"`
}

// Bid represents a user's bid on a listing. Amount is immutable; only Status
// changes after creation.
type Bid struct {
	BidID        string           `json:"bid_id"`
	ListingID    string           `json:"listing_id"`
	BidderID     string           `json:"bidder_id"`
	Amount       decimal.Decimal  `json:"amount"`
	Status       BidStatus        `json:"status"`
	IsAutoBid    bool             `json:"is_auto_bid"`
	MaxBidAmount *decimal.Decimal `json:"max_bid_amount,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// User represents a marketplace participant with cumulative auction stats.
// Stats are incremented alongside bid placement and settlement, never
// recomputed from scratch.
type User struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`

	TotalBids   int `json:"total_bids"`
	TotalWins   int `json:"total_wins"`
	TotalLosses int `json:"total_losses"`

	TotalSold    int             `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	SellerRating float64         `json:"seller_rating"`

	CreatedAt time.Time `json:"created_at"`
}

// WatchlistEntry is a unique (user, listing) pair
type WatchlistEntry struct {
	UserID    string    `json:"user_id"`
	ListingID string    `json:"listing_id"`
	AddedAt   time.Time `json:"added_at"`
}

// Notification is an in-app message addressed to a single recipient
type Notification struct {
	NotificationID string           `json:"notification_id"`
	RecipientID    string           `json:"recipient_id"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	ListingID      string           `json:"listing_id,omitempty"`
	BidID          string           `json:"bid_id,omitempty"`
	IsRead         bool             `json:"is_read"`
	CreatedAt      time.Time        `json:"created_at"`
}
