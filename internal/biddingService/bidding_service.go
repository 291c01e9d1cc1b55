package bidding

import (
	"errors"
	"fmt"
	"time"

	"auctionhub/internal/auctionerrors"
	model "auctionhub/internal/models"
	"auctionhub/internal/notification"
	"auctionhub/internal/repository"
	"auctionhub/utils"

	"github.com/shopspring/decimal"
)

// autoExtendWindow is the remaining-time threshold under which an accepted bid
// pushes the auction deadline out. The extension length itself comes from the
// listing's AutoExtendMinutes.
const autoExtendWindow = 5 * time.Minute

// maxPlaceBidAttempts bounds the retry loop on concurrent listing updates
const maxPlaceBidAttempts = 3

// BidResult is the outcome of a placed bid: either a recorded bid, or the
// listing sold outright at its buy-now price (in which case Bid is nil).
type BidResult struct {
	Bid     *model.Bid    `json:"bid,omitempty"`
	Listing model.Listing `json:"listing"`
	Sold    bool          `json:"sold"`
}

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	repo          repository.AuctionDB
	notifications *notification.Service
	now           func() time.Time
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB, notifications *notification.Service) *BiddingService {
	return NewBiddingServiceWithClock(repo, notifications, func() time.Time { return time.Now().UTC() })
}

// NewBiddingServiceWithClock creates a BiddingService with an injected clock,
// so tests can drive time deterministically.
func NewBiddingServiceWithClock(repo repository.AuctionDB, notifications *notification.Service, now func() time.Time) *BiddingService {
	return &BiddingService{
		repo:          repo,
		notifications: notifications,
		now:           now,
	}
}

// PlaceBid validates and records a bid against a listing. It enforces the
// minimum increment, short-circuits to sold when the buy-now price is met,
// and extends the deadline for late bids. Concurrent bids on the same listing
// are resolved by re-reading and retrying on a version conflict.
func (s *BiddingService) PlaceBid(listingID, bidderID string, amount decimal.Decimal, isAutoBid bool, maxAmount *decimal.Decimal) (BidResult, error) {
	if err := validateBidInput(listingID, bidderID, amount); err != nil {
		return BidResult{}, err
	}

	var lastErr error
	for attempt := 0; attempt < maxPlaceBidAttempts; attempt++ {
		result, err := s.tryPlaceBid(listingID, bidderID, amount, isAutoBid, maxAmount)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, auctionerrors.ErrVersionConflict) {
			return BidResult{}, err
		}
		lastErr = err
	}
	return BidResult{}, fmt.Errorf("service: giving up after %d attempts on listing %s: %w", maxPlaceBidAttempts, listingID, lastErr)
}

func validateBidInput(listingID, bidderID string, amount decimal.Decimal) error {
	if listingID == "" || bidderID == "" {
		return fmt.Errorf("service: %w - missing listingID or bidderID", auctionerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}
	return nil
}

func (s *BiddingService) tryPlaceBid(listingID, bidderID string, amount decimal.Decimal, isAutoBid bool, maxAmount *decimal.Decimal) (BidResult, error) {
	listing, err := s.repo.GetListingByID(listingID)
	if err != nil {
		return BidResult{}, fmt.Errorf("service: %w", err)
	}
	if listing.Status != model.ListingStatusActive {
		return BidResult{}, fmt.Errorf("service: %w - listing %s is %s", auctionerrors.ErrListingUnavailable, listingID, listing.Status)
	}

	now := s.now()
	if now.After(listing.EndTime) {
		return BidResult{}, fmt.Errorf("service: %w - listing %s closed at %s", auctionerrors.ErrAuctionEnded, listingID, listing.EndTime.Format(time.RFC3339))
	}

	minBid := decimal.Max(listing.CurrentPrice.Add(listing.MinIncrement), listing.StartPrice)
	if amount.LessThan(minBid) {
		return BidResult{}, fmt.Errorf("service: %w - bid must be at least %s", auctionerrors.ErrBidTooLow, minBid)
	}

	if listing.BuyNowPrice != nil && amount.GreaterThanOrEqual(*listing.BuyNowPrice) {
		return s.sellAtBuyNow(listing, bidderID, amount)
	}

	// Previous top bid, read before the new bid lands, drives outbid handling.
	prevTop, prevErr := s.repo.GetHighestActiveBid(listingID)
	if prevErr != nil && !errors.Is(prevErr, auctionerrors.ErrNoBids) {
		return BidResult{}, fmt.Errorf("service: failed to check highest bid for listing %s: %w", listingID, prevErr)
	}

	updated := listing
	if updated.AutoExtendEnabled && updated.EndTime.Sub(now) < autoExtendWindow {
		updated.EndTime = now.Add(time.Duration(updated.AutoExtendMinutes) * time.Minute)
	}

	bid := model.Bid{
		BidID:        utils.GenerateID(),
		ListingID:    listingID,
		BidderID:     bidderID,
		Amount:       amount,
		Status:       model.BidStatusActive,
		IsAutoBid:    isAutoBid,
		MaxBidAmount: maxAmount,
		CreatedAt:    now,
	}

	updated.CurrentPrice = amount
	updated.BidCount++
	updated.Version++

	if err := s.repo.RecordBidForListing(bid, updated); err != nil {
		return BidResult{}, fmt.Errorf("service: failed to record bid for listing %s by user %s: %w", listingID, bidderID, err)
	}

	if prevErr == nil && prevTop.BidderID != bidderID {
		s.markOutbid(prevTop, updated)
	}

	return BidResult{Bid: &bid, Listing: updated}, nil
}

// sellAtBuyNow finalizes the listing immediately. No bid record is created on
// this path; the offered amount is logged for audit since only the buy-now
// price is persisted.
func (s *BiddingService) sellAtBuyNow(listing model.Listing, bidderID string, amount decimal.Decimal) (BidResult, error) {
	buyNow := *listing.BuyNowPrice

	updated := listing
	updated.Status = model.ListingStatusSold
	updated.WinnerID = bidderID
	updated.FinalPrice = &buyNow
	updated.Version++

	if err := s.repo.UpdateListing(updated); err != nil {
		return BidResult{}, fmt.Errorf("service: failed to sell listing %s at buy-now: %w", listing.ListingID, err)
	}

	utils.Info("listing sold at buy-now price", map[string]any{
		"listing_id":     listing.ListingID,
		"winner_id":      bidderID,
		"buy_now_price":  buyNow.String(),
		"offered_amount": amount.String(),
	})

	return BidResult{Listing: updated, Sold: true}, nil
}

// markOutbid flags the previous top bid and notifies its bidder. Failures are
// logged and never fail the accepted bid.
func (s *BiddingService) markOutbid(prevTop model.Bid, listing model.Listing) {
	if err := s.repo.UpdateBidStatus(prevTop.BidID, model.BidStatusOverbid); err != nil {
		utils.Warn("failed to mark bid as overbid", map[string]any{
			"bid_id": prevTop.BidID,
			"error":  err.Error(),
		})
	}
	if s.notifications == nil {
		return
	}
	_, err := s.notifications.Create(model.Notification{
		RecipientID: prevTop.BidderID,
		Type:        model.NotificationBidOutbid,
		Title:       "You have been outbid",
		Message:     fmt.Sprintf("Someone placed a higher bid on %s. Current price is %s.", listing.Title, listing.CurrentPrice),
		ListingID:   listing.ListingID,
		BidID:       prevTop.BidID,
	})
	if err != nil {
		utils.Warn("failed to create outbid notification", map[string]any{
			"recipient_id": prevTop.BidderID,
			"listing_id":   listing.ListingID,
			"error":        err.Error(),
		})
	}
}

// GetBidHistory returns the bids placed on a listing, newest first
func (s *BiddingService) GetBidHistory(listingID string, limit int) ([]model.Bid, error) {
	if listingID == "" {
		return nil, fmt.Errorf("service: %w - empty listing ID", auctionerrors.ErrInvalidBid)
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	bids, err := s.repo.GetBidsByListing(listingID, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for listing %s: %w", listingID, err)
	}
	return bids, nil
}

// GetListing returns a single listing
func (s *BiddingService) GetListing(listingID string) (model.Listing, error) {
	if listingID == "" {
		return model.Listing{}, fmt.Errorf("service: empty listing ID")
	}
	listing, err := s.repo.GetListingByID(listingID)
	if err != nil {
		return model.Listing{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	return listing, nil
}

// AddToWatchlist puts a listing on a user's watchlist
func (s *BiddingService) AddToWatchlist(userID, listingID string) error {
	if userID == "" || listingID == "" {
		return fmt.Errorf("service: missing userID or listingID")
	}
	if err := s.repo.AddToWatchlist(userID, listingID); err != nil {
		return fmt.Errorf("service: failed to watch listing %s for user %s: %w", listingID, userID, err)
	}
	return nil
}

// RemoveFromWatchlist removes a listing from a user's watchlist
func (s *BiddingService) RemoveFromWatchlist(userID, listingID string) error {
	if userID == "" || listingID == "" {
		return fmt.Errorf("service: missing userID or listingID")
	}
	if err := s.repo.RemoveFromWatchlist(userID, listingID); err != nil {
		return fmt.Errorf("service: failed to unwatch listing %s for user %s: %w", listingID, userID, err)
	}
	return nil
}

// GetWatchlist returns the listings a user is watching
func (s *BiddingService) GetWatchlist(userID string) ([]model.Listing, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: empty user ID")
	}
	listings, err := s.repo.GetWatchlistByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get watchlist for user %s: %w", userID, err)
	}
	return listings, nil
}
