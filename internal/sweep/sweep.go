package sweep

import (
	"errors"
	"fmt"
	"time"

	"auctionhub/internal/auctionerrors"
	model "auctionhub/internal/models"
	"auctionhub/internal/notification"
	"auctionhub/internal/repository"
	"auctionhub/utils"
)

// endingSoonWindow is how far ahead the reminder job looks for closing auctions
const endingSoonWindow = time.Hour

// Sweeper closes expired auctions and reminds bidders about ones ending soon.
// The clock is injected so tests can drive time instead of waiting on it.
type Sweeper struct {
	repo          repository.AuctionDB
	notifications *notification.Service
	now           func() time.Time
}

// NewSweeper creates a new Sweeper instance
func NewSweeper(repo repository.AuctionDB, notifications *notification.Service, now func() time.Time) *Sweeper {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Sweeper{
		repo:          repo,
		notifications: notifications,
		now:           now,
	}
}

// CloseExpiredAuctions settles every active listing whose end time has passed
// and returns how many were closed. A failure on one listing is logged and
// does not stop the pass; an already-settled listing counts as done.
func (s *Sweeper) CloseExpiredAuctions() (int, error) {
	now := s.now()
	expired, err := s.repo.GetExpiredActiveListings(now)
	if err != nil {
		return 0, fmt.Errorf("sweep: failed to query expired listings: %w", err)
	}

	closed := 0
	for _, listing := range expired {
		if err := s.closeListing(listing); err != nil {
			utils.Error("sweep: failed to close listing", map[string]any{
				"listing_id": listing.ListingID,
				"error":      err.Error(),
			})
			continue
		}
		closed++
	}
	return closed, nil
}

func (s *Sweeper) closeListing(listing model.Listing) error {
	winning, err := s.repo.GetHighestActiveBid(listing.ListingID)
	if errors.Is(err, auctionerrors.ErrNoBids) {
		if err := s.repo.SettleListingUnsold(listing.ListingID); err != nil {
			if errors.Is(err, auctionerrors.ErrAlreadySettled) {
				return nil
			}
			return err
		}
		utils.Info("auction ended with no bids", map[string]any{
			"listing_id": listing.ListingID,
			"title":      listing.Title,
		})
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.repo.SettleListingSold(listing.ListingID, winning); err != nil {
		if errors.Is(err, auctionerrors.ErrAlreadySettled) {
			return nil
		}
		return err
	}

	s.notifyClosed(listing, winning)

	utils.Info("closed auction", map[string]any{
		"listing_id":  listing.ListingID,
		"title":       listing.Title,
		"winner_id":   winning.BidderID,
		"final_price": winning.Amount.String(),
	})
	return nil
}

// notifyClosed emits the winner and seller notifications. The listing is
// already settled at this point; a notification failure is logged, not
// propagated, so a later pass never re-settles.
func (s *Sweeper) notifyClosed(listing model.Listing, winning model.Bid) {
	if s.notifications == nil {
		return
	}

	if _, err := s.notifications.Create(model.Notification{
		RecipientID: winning.BidderID,
		Type:        model.NotificationAuctionWon,
		Title:       "Congratulations! You won an auction",
		Message:     fmt.Sprintf("You won the auction for %s at %s", listing.Title, winning.Amount),
		ListingID:   listing.ListingID,
		BidID:       winning.BidID,
	}); err != nil {
		utils.Error("sweep: failed to notify winner", map[string]any{
			"listing_id": listing.ListingID,
			"winner_id":  winning.BidderID,
			"error":      err.Error(),
		})
	}

	if _, err := s.notifications.Create(model.Notification{
		RecipientID: listing.SellerID,
		Type:        model.NotificationPaymentReceived,
		Title:       "Your item has been sold",
		Message:     fmt.Sprintf("%s sold for %s", listing.Title, winning.Amount),
		ListingID:   listing.ListingID,
	}); err != nil {
		utils.Error("sweep: failed to notify seller", map[string]any{
			"listing_id": listing.ListingID,
			"seller_id":  listing.SellerID,
			"error":      err.Error(),
		})
	}
}

// NotifyEndingSoon sends a one-time reminder to every distinct bidder on
// listings ending within the next hour. De-dup is per (recipient, listing)
// and best-effort; a duplicate reminder is tolerable, a missed one is not
// worth failing the pass over.
func (s *Sweeper) NotifyEndingSoon() (int, error) {
	if s.notifications == nil {
		return 0, nil
	}

	now := s.now()
	ending, err := s.repo.GetListingsEndingBetween(now, now.Add(endingSoonWindow))
	if err != nil {
		return 0, fmt.Errorf("sweep: failed to query ending listings: %w", err)
	}

	sent := 0
	for _, listing := range ending {
		bidders, err := s.repo.GetDistinctBidders(listing.ListingID)
		if err != nil {
			utils.Error("sweep: failed to list bidders", map[string]any{
				"listing_id": listing.ListingID,
				"error":      err.Error(),
			})
			continue
		}

		for _, bidderID := range bidders {
			already, err := s.notifications.AlreadyNotified(bidderID, model.NotificationAuctionEnding, listing.ListingID)
			if err != nil {
				utils.Error("sweep: reminder de-dup lookup failed", map[string]any{
					"listing_id": listing.ListingID,
					"bidder_id":  bidderID,
					"error":      err.Error(),
				})
				continue
			}
			if already {
				continue
			}

			if _, err := s.notifications.Create(model.Notification{
				RecipientID: bidderID,
				Type:        model.NotificationAuctionEnding,
				Title:       "Auction ending soon",
				Message:     fmt.Sprintf("%s ends in less than 1 hour!", listing.Title),
				ListingID:   listing.ListingID,
			}); err != nil {
				utils.Error("sweep: failed to send reminder", map[string]any{
					"listing_id": listing.ListingID,
					"bidder_id":  bidderID,
					"error":      err.Error(),
				})
				continue
			}
			sent++
		}
	}
	return sent, nil
}
