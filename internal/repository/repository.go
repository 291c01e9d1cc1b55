package repository

import (
	"time"

	model "auctionhub/internal/models"
)

// AuctionDB defines the storage contract for the auction marketplace.
//
// Listing writes are guarded by optimistic concurrency: callers read a
// listing, mutate a copy with Version incremented by one, and the store
// rejects the write with ErrVersionConflict when the stored version no longer
// matches. RecordBidForListing and the two Settle methods are atomic units;
// either every write in them lands or none does.
type AuctionDB interface {
	// Listings
	GetListingByID(listingID string) (model.Listing, error)
	UpdateListing(listing model.Listing) error
	GetExpiredActiveListings(now time.Time) ([]model.Listing, error)
	GetListingsEndingBetween(from, to time.Time) ([]model.Listing, error)

	// Bids
	// RecordBidForListing persists the bid, applies the listing update and
	// increments the bidder's total_bids counter in one atomic unit.
	RecordBidForListing(bid model.Bid, listing model.Listing) error
	// GetBidsByListing returns bids newest first, at most limit entries
	// (limit <= 0 means no limit).
	GetBidsByListing(listingID string, limit int) ([]model.Bid, error)
	// GetHighestActiveBid returns the active bid with the highest amount;
	// equal amounts resolve to the earliest-created bid.
	GetHighestActiveBid(listingID string) (model.Bid, error)
	UpdateBidStatus(bidID string, status model.BidStatus) error
	GetDistinctBidders(listingID string) ([]string, error)

	// Settlement. Both methods refuse with ErrAlreadySettled once the listing
	// status has left active, which makes re-running a sweep a no-op.
	SettleListingSold(listingID string, winningBid model.Bid) error
	SettleListingUnsold(listingID string) error

	// Users
	GetUserByID(userID string) (model.User, error)

	// Watchlist. The (user, listing) pair is unique; a duplicate add fails
	// with ErrAlreadyWatched and leaves watch_count untouched.
	AddToWatchlist(userID, listingID string) error
	RemoveFromWatchlist(userID, listingID string) error
	GetWatchlistByUser(userID string) ([]model.Listing, error)

	// Notifications
	CreateNotification(n model.Notification) error
	GetNotificationsByUser(userID string, limit int) ([]model.Notification, error)
	// HasNotification reports whether the recipient already has a notification
	// of the given type for the listing. Backed by an indexed lookup, not a scan.
	HasNotification(userID string, notifType model.NotificationType, listingID string) (bool, error)
	MarkNotificationRead(notificationID, userID string) error
	MarkAllNotificationsRead(userID string) (int, error)
	CountUnreadNotifications(userID string) (int, error)
}
