package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"auctionhub/internal/auctionerrors"
	model "auctionhub/internal/models"
)

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu            sync.RWMutex
	listings      map[string]model.Listing
	bidsByListing map[string][]model.Bid          // key: listingID -> bids in creation order
	bidListing    map[string]string               // key: bidID -> listingID
	users         map[string]model.User           // key: userID
	watchlists    map[string]map[string]time.Time // key: userID -> listingID -> addedAt
	notifications map[string][]model.Notification // key: recipientID -> notifications in creation order
	notifByID     map[string]string               // key: notificationID -> recipientID
	notifIndex    map[string]struct{}             // key: recipient|type|listing, for de-dup lookups
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		listings:      make(map[string]model.Listing),
		bidsByListing: make(map[string][]model.Bid),
		bidListing:    make(map[string]string),
		users:         make(map[string]model.User),
		watchlists:    make(map[string]map[string]time.Time),
		notifications: make(map[string][]model.Notification),
		notifByID:     make(map[string]string),
		notifIndex:    make(map[string]struct{}),
	}
}

func notifKey(recipientID string, notifType model.NotificationType, listingID string) string {
	return recipientID + "|" + string(notifType) + "|" + listingID
}

// AddListing seeds a listing. CurrentPrice is normalized so it never starts
// below StartPrice, and Version starts at 1.
func (r *MemoryRepo) AddListing(listing model.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if listing.CurrentPrice.LessThan(listing.StartPrice) {
		listing.CurrentPrice = listing.StartPrice
	}
	if listing.Version == 0 {
		listing.Version = 1
	}
	r.listings[listing.ListingID] = listing
}

// AddUser seeds a user
func (r *MemoryRepo) AddUser(user model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
}

// GetListingByID returns the listing with the given id
func (r *MemoryRepo) GetListingByID(listingID string) (model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return listing, nil
}

// UpdateListing applies a versioned listing update. The incoming Version must
// be exactly one ahead of the stored one.
func (r *MemoryRepo) UpdateListing(listing model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.updateListingLocked(listing)
}

func (r *MemoryRepo) updateListingLocked(listing model.Listing) error {
	stored, ok := r.listings[listing.ListingID]
	if !ok {
		return fmt.Errorf("update listing %s: %w", listing.ListingID, auctionerrors.ErrListingNotFound)
	}
	if stored.Version != listing.Version-1 {
		return fmt.Errorf("update listing %s at version %d: %w", listing.ListingID, listing.Version-1, auctionerrors.ErrVersionConflict)
	}
	r.listings[listing.ListingID] = listing
	return nil
}

// GetExpiredActiveListings returns active listings whose end time has passed
func (r *MemoryRepo) GetExpiredActiveListings(now time.Time) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	expired := make([]model.Listing, 0)
	for _, listing := range r.listings {
		if listing.Status == model.ListingStatusActive && !listing.EndTime.After(now) {
			expired = append(expired, listing)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].EndTime.Before(expired[j].EndTime) })
	return expired, nil
}

// GetListingsEndingBetween returns active listings with from <= EndTime <= to
func (r *MemoryRepo) GetListingsEndingBetween(from, to time.Time) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ending := make([]model.Listing, 0)
	for _, listing := range r.listings {
		if listing.Status != model.ListingStatusActive {
			continue
		}
		if listing.EndTime.Before(from) || listing.EndTime.After(to) {
			continue
		}
		ending = append(ending, listing)
	}
	sort.Slice(ending, func(i, j int) bool { return ending[i].EndTime.Before(ending[j].EndTime) })
	return ending, nil
}

// RecordBidForListing records the bid, applies the listing update and bumps
// the bidder's total_bids inside one critical section.
func (r *MemoryRepo) RecordBidForListing(bid model.Bid, listing model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if bid.ListingID != listing.ListingID {
		return fmt.Errorf("record bid %s: bid listing %s does not match update target %s", bid.BidID, bid.ListingID, listing.ListingID)
	}
	if err := r.updateListingLocked(listing); err != nil {
		return fmt.Errorf("record bid %s: %w", bid.BidID, err)
	}

	r.bidsByListing[bid.ListingID] = append(r.bidsByListing[bid.ListingID], bid)
	r.bidListing[bid.BidID] = bid.ListingID

	if bidder, ok := r.users[bid.BidderID]; ok {
		bidder.TotalBids++
		r.users[bid.BidderID] = bidder
	}
	return nil
}

// GetBidsByListing returns bids for a listing, newest first
func (r *MemoryRepo) GetBidsByListing(listingID string, limit int) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.bidsByListing[listingID]
	bids := make([]model.Bid, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		bids = append(bids, stored[i])
		if limit > 0 && len(bids) == limit {
			break
		}
	}
	return bids, nil
}

// GetHighestActiveBid returns the highest active bid for a listing, resolving
// equal amounts to the earliest-created bid.
func (r *MemoryRepo) GetHighestActiveBid(listingID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var winning model.Bid
	found := false
	for _, b := range r.bidsByListing[listingID] {
		if b.Status != model.BidStatusActive {
			continue
		}
		if !found || b.Amount.GreaterThan(winning.Amount) ||
			(b.Amount.Equal(winning.Amount) && b.CreatedAt.Before(winning.CreatedAt)) {
			winning = b
			found = true
		}
	}
	if !found {
		return model.Bid{}, fmt.Errorf("get highest active bid for listing %s: %w", listingID, auctionerrors.ErrNoBids)
	}
	return winning, nil
}

// UpdateBidStatus sets the status of a single bid
func (r *MemoryRepo) UpdateBidStatus(bidID string, status model.BidStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listingID, ok := r.bidListing[bidID]
	if !ok {
		return fmt.Errorf("update bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	bids := r.bidsByListing[listingID]
	for i := range bids {
		if bids[i].BidID == bidID {
			bids[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("update bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
}

// GetDistinctBidders returns the distinct bidder ids for a listing
func (r *MemoryRepo) GetDistinctBidders(listingID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	bidders := make([]string, 0)
	for _, b := range r.bidsByListing[listingID] {
		if _, ok := seen[b.BidderID]; ok {
			continue
		}
		seen[b.BidderID] = struct{}{}
		bidders = append(bidders, b.BidderID)
	}
	return bidders, nil
}

// SettleListingSold finalizes an expired listing in favor of winningBid:
// listing becomes sold, the winning bid won, every other open bid lost, and
// seller/winner/loser stats are adjusted. The whole unit is atomic and refuses
// to run twice for the same listing.
func (r *MemoryRepo) SettleListingSold(listingID string, winningBid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return fmt.Errorf("settle listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if listing.Status != model.ListingStatusActive {
		return fmt.Errorf("settle listing %s with status %s: %w", listingID, listing.Status, auctionerrors.ErrAlreadySettled)
	}

	finalPrice := winningBid.Amount
	listing.Status = model.ListingStatusSold
	listing.WinnerID = winningBid.BidderID
	listing.FinalPrice = &finalPrice
	listing.Version++
	r.listings[listingID] = listing

	losers := make(map[string]struct{})
	bids := r.bidsByListing[listingID]
	for i := range bids {
		if bids[i].BidID == winningBid.BidID {
			bids[i].Status = model.BidStatusWon
			continue
		}
		if bids[i].Status == model.BidStatusActive || bids[i].Status == model.BidStatusOverbid {
			bids[i].Status = model.BidStatusLost
			if bids[i].BidderID != winningBid.BidderID {
				losers[bids[i].BidderID] = struct{}{}
			}
		}
	}

	if seller, ok := r.users[listing.SellerID]; ok {
		seller.TotalSold++
		seller.TotalRevenue = seller.TotalRevenue.Add(finalPrice)
		r.users[listing.SellerID] = seller
	}
	if winner, ok := r.users[winningBid.BidderID]; ok {
		winner.TotalWins++
		r.users[winningBid.BidderID] = winner
	}
	for loserID := range losers {
		if loser, ok := r.users[loserID]; ok {
			loser.TotalLosses++
			r.users[loserID] = loser
		}
	}
	return nil
}

// SettleListingUnsold closes an expired listing that attracted no bids
func (r *MemoryRepo) SettleListingUnsold(listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return fmt.Errorf("settle listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if listing.Status != model.ListingStatusActive {
		return fmt.Errorf("settle listing %s with status %s: %w", listingID, listing.Status, auctionerrors.ErrAlreadySettled)
	}

	listing.Status = model.ListingStatusUnsold
	listing.Version++
	r.listings[listingID] = listing
	return nil
}

// GetUserByID returns the user with the given id
func (r *MemoryRepo) GetUserByID(userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// AddToWatchlist inserts the (user, listing) pair and increments watch_count.
// Duplicate pairs are rejected so the counter cannot drift.
func (r *MemoryRepo) AddToWatchlist(userID, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return fmt.Errorf("watch listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	if _, ok := r.watchlists[userID][listingID]; ok {
		return fmt.Errorf("watch listing %s for user %s: %w", listingID, userID, auctionerrors.ErrAlreadyWatched)
	}
	if r.watchlists[userID] == nil {
		r.watchlists[userID] = make(map[string]time.Time)
	}
	r.watchlists[userID][listingID] = time.Now().UTC()

	listing.WatchCount++
	listing.Version++
	r.listings[listingID] = listing
	return nil
}

// RemoveFromWatchlist deletes the (user, listing) pair and decrements watch_count
func (r *MemoryRepo) RemoveFromWatchlist(userID, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.watchlists[userID][listingID]; !ok {
		return fmt.Errorf("unwatch listing %s for user %s: %w", listingID, userID, auctionerrors.ErrNotWatched)
	}
	delete(r.watchlists[userID], listingID)

	if listing, ok := r.listings[listingID]; ok {
		listing.WatchCount--
		listing.Version++
		r.listings[listingID] = listing
	}
	return nil
}

// GetWatchlistByUser returns the listings on a user's watchlist, most recently
// added first.
func (r *MemoryRepo) GetWatchlistByUser(userID string) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type watched struct {
		listing model.Listing
		addedAt time.Time
	}
	entries := make([]watched, 0, len(r.watchlists[userID]))
	for listingID, addedAt := range r.watchlists[userID] {
		if listing, ok := r.listings[listingID]; ok {
			entries = append(entries, watched{listing: listing, addedAt: addedAt})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].addedAt.After(entries[j].addedAt) })

	listings := make([]model.Listing, 0, len(entries))
	for _, e := range entries {
		listings = append(listings, e.listing)
	}
	return listings, nil
}

// CreateNotification stores a notification and indexes it for de-dup lookups
func (r *MemoryRepo) CreateNotification(n model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications[n.RecipientID] = append(r.notifications[n.RecipientID], n)
	r.notifByID[n.NotificationID] = n.RecipientID
	if n.ListingID != "" {
		r.notifIndex[notifKey(n.RecipientID, n.Type, n.ListingID)] = struct{}{}
	}
	return nil
}

// GetNotificationsByUser returns a user's notifications, newest first
func (r *MemoryRepo) GetNotificationsByUser(userID string, limit int) ([]model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.notifications[userID]
	notifs := make([]model.Notification, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		notifs = append(notifs, stored[i])
		if limit > 0 && len(notifs) == limit {
			break
		}
	}
	return notifs, nil
}

// HasNotification reports whether the recipient already holds a notification
// of the given type for the listing.
func (r *MemoryRepo) HasNotification(userID string, notifType model.NotificationType, listingID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.notifIndex[notifKey(userID, notifType, listingID)]
	return ok, nil
}

// MarkNotificationRead marks one notification read, scoped to its recipient
func (r *MemoryRepo) MarkNotificationRead(notificationID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recipientID, ok := r.notifByID[notificationID]
	if !ok || recipientID != userID {
		return fmt.Errorf("mark notification %s read for user %s: %w", notificationID, userID, auctionerrors.ErrNotificationNotFound)
	}
	notifs := r.notifications[recipientID]
	for i := range notifs {
		if notifs[i].NotificationID == notificationID {
			notifs[i].IsRead = true
			return nil
		}
	}
	return fmt.Errorf("mark notification %s read for user %s: %w", notificationID, userID, auctionerrors.ErrNotificationNotFound)
}

// MarkAllNotificationsRead marks every unread notification of a user as read
// and returns how many were affected.
func (r *MemoryRepo) MarkAllNotificationsRead(userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	notifs := r.notifications[userID]
	for i := range notifs {
		if !notifs[i].IsRead {
			notifs[i].IsRead = true
			count++
		}
	}
	return count, nil
}

// CountUnreadNotifications returns the number of unread notifications for a user
func (r *MemoryRepo) CountUnreadNotifications(userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.notifications[userID] {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}
