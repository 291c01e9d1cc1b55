package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrListingNotFound      = errors.New("listing not found")
	ErrBidNotFound          = errors.New("bid not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNoBids               = errors.New("no bids found for listing")
	ErrAlreadyWatched       = errors.New("listing already on watchlist")
	ErrNotWatched           = errors.New("listing not on watchlist")
	ErrVersionConflict      = errors.New("listing modified concurrently")
	ErrAlreadySettled       = errors.New("listing already settled")
)

// business logic errors
var (
	ErrInvalidBid         = errors.New("invalid bid")
	ErrListingUnavailable = errors.New("listing is not available for bidding")
	ErrAuctionEnded       = errors.New("auction has ended")
	ErrBidTooLow          = errors.New("bid amount too low")
)
