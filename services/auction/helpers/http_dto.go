package helpers

import (
	"github.com/shopspring/decimal"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	BidderID  string           `json:"bidder_id" binding:"required"`
	Amount    decimal.Decimal  `json:"amount" binding:"required"`
	IsAutoBid bool             `json:"is_auto_bid"`
	MaxAmount *decimal.Decimal `json:"max_amount,omitempty"`
}

type WatchRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type BidResponse struct {
	BidID     string          `json:"bid_id"`
	ListingID string          `json:"listing_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	IsAutoBid bool            `json:"is_auto_bid"`
	CreatedAt string          `json:"created_at"`
}

type SoldListingResponse struct {
	ListingID  string          `json:"listing_id"`
	Title      string          `json:"title"`
	Status     string          `json:"status"`
	WinnerID   string          `json:"winner_id"`
	FinalPrice decimal.Decimal `json:"final_price"`
}
