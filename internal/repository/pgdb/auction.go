package pgdb

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auctionhub/internal/auctionerrors"
	model "auctionhub/internal/models"
	"auctionhub/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// uniqueViolation is the Postgres error code for a unique-constraint breach
const uniqueViolation = "23505"

// AuctionRepo is the Postgres-backed implementation of repository.AuctionDB
type AuctionRepo struct {
	*postgres.Postgres
}

// NewAuctionRepo creates a new AuctionRepo instance
func NewAuctionRepo(pg *postgres.Postgres) *AuctionRepo {
	return &AuctionRepo{pg}
}

const listingColumns = "id, title, description, category_id, seller_id, start_price, current_price, min_increment, buy_now_price, status, start_time, end_time, auto_extend_enabled, auto_extend_minutes, view_count, bid_count, watch_count, winner_id, final_price, version, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (model.Listing, error) {
	var l model.Listing
	var status string
	var buyNow, finalPrice decimal.NullDecimal
	err := row.Scan(&l.ListingID, &l.Title, &l.Description, &l.CategoryID, &l.SellerID,
		&l.StartPrice, &l.CurrentPrice, &l.MinIncrement, &buyNow, &status,
		&l.StartTime, &l.EndTime, &l.AutoExtendEnabled, &l.AutoExtendMinutes,
		&l.ViewCount, &l.BidCount, &l.WatchCount, &l.WinnerID, &finalPrice,
		&l.Version, &l.CreatedAt)
	if err != nil {
		return model.Listing{}, err
	}
	l.Status = model.ListingStatus(status)
	if buyNow.Valid {
		l.BuyNowPrice = &buyNow.Decimal
	}
	if finalPrice.Valid {
		l.FinalPrice = &finalPrice.Decimal
	}
	return l, nil
}

const bidColumns = "id, listing_id, bidder_id, amount, status, is_auto_bid, max_bid_amount, created_at"

func scanBid(row rowScanner) (model.Bid, error) {
	var b model.Bid
	var status string
	var maxBid decimal.NullDecimal
	err := row.Scan(&b.BidID, &b.ListingID, &b.BidderID, &b.Amount, &status, &b.IsAutoBid, &maxBid, &b.CreatedAt)
	if err != nil {
		return model.Bid{}, err
	}
	b.Status = model.BidStatus(status)
	if maxBid.Valid {
		b.MaxBidAmount = &maxBid.Decimal
	}
	return b, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// GetListingByID returns the listing with the given id
func (r *AuctionRepo) GetListingByID(listingID string) (model.Listing, error) {
	getListingSql, args, _ := r.SqlBuilder.
		Select(listingColumns).
		From("listings").
		Where("id = ?", listingID).
		ToSql()

	listing, err := scanListing(r.Database.QueryRow(getListingSql, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
		}
		return model.Listing{}, err
	}
	return listing, nil
}

// listingUpdateMap holds every listing field a versioned update may change
func listingUpdateMap(listing model.Listing) map[string]any {
	return map[string]any{
		"current_price": listing.CurrentPrice,
		"status":        string(listing.Status),
		"end_time":      listing.EndTime,
		"bid_count":     listing.BidCount,
		"watch_count":   listing.WatchCount,
		"view_count":    listing.ViewCount,
		"winner_id":     listing.WinnerID,
		"final_price":   nullDecimal(listing.FinalPrice),
		"version":       listing.Version,
	}
}

// UpdateListing applies a versioned listing update; the write only lands when
// the stored version is still the one the caller read.
func (r *AuctionRepo) UpdateListing(listing model.Listing) error {
	updateSql, args, _ := r.SqlBuilder.
		Update("listings").
		SetMap(listingUpdateMap(listing)).
		Where("id = ?", listing.ListingID).
		Where("version = ?", listing.Version-1).
		ToSql()

	res, err := r.Database.Exec(updateSql, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return r.classifyStaleListing(listing.ListingID)
	}
	return nil
}

// classifyStaleListing distinguishes a missing listing from a concurrent update
func (r *AuctionRepo) classifyStaleListing(listingID string) error {
	existsSql, args, _ := r.SqlBuilder.
		Select("1").
		From("listings").
		Where("id = ?", listingID).
		ToSql()

	var one int
	if err := r.Database.QueryRow(existsSql, args...).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("update listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
		}
		return err
	}
	return fmt.Errorf("update listing %s: %w", listingID, auctionerrors.ErrVersionConflict)
}

// GetExpiredActiveListings returns active listings whose end time has passed
func (r *AuctionRepo) GetExpiredActiveListings(now time.Time) ([]model.Listing, error) {
	querySql, args, _ := r.SqlBuilder.
		Select(listingColumns).
		From("listings").
		Where("status = ?", string(model.ListingStatusActive)).
		Where("end_time <= ?", now).
		OrderBy("end_time ASC").
		ToSql()

	return r.queryListings(querySql, args)
}

// GetListingsEndingBetween returns active listings with from <= end_time <= to
func (r *AuctionRepo) GetListingsEndingBetween(from, to time.Time) ([]model.Listing, error) {
	querySql, args, _ := r.SqlBuilder.
		Select(listingColumns).
		From("listings").
		Where("status = ?", string(model.ListingStatusActive)).
		Where("end_time >= ?", from).
		Where("end_time <= ?", to).
		OrderBy("end_time ASC").
		ToSql()

	return r.queryListings(querySql, args)
}

func (r *AuctionRepo) queryListings(querySql string, args []any) ([]model.Listing, error) {
	rows, err := r.Database.Query(querySql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := make([]model.Listing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return listings, err
		}
		listings = append(listings, listing)
	}
	if err = rows.Err(); err != nil {
		return listings, err
	}
	return listings, nil
}

// RecordBidForListing inserts the bid, applies the versioned listing update
// and bumps the bidder's total_bids in one transaction.
func (r *AuctionRepo) RecordBidForListing(bid model.Bid, listing model.Listing) error {
	tx, err := r.Database.Begin()
	if err != nil {
		return err
	}

	updateSql, args, _ := r.SqlBuilder.
		Update("listings").
		SetMap(listingUpdateMap(listing)).
		Where("id = ?", listing.ListingID).
		Where("version = ?", listing.Version-1).
		ToSql()

	res, err := tx.Exec(updateSql, args...)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return err
	}
	if affected == 0 {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return r.classifyStaleListing(listing.ListingID)
	}

	insertBidSql, args, _ := r.SqlBuilder.
		Insert("bids").
		Columns("id", "listing_id", "bidder_id", "amount", "status", "is_auto_bid", "max_bid_amount", "created_at").
		Values(bid.BidID, bid.ListingID, bid.BidderID, bid.Amount, string(bid.Status), bid.IsAutoBid, nullDecimal(bid.MaxBidAmount), bid.CreatedAt).
		ToSql()

	if _, err = tx.Exec(insertBidSql, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return err
	}

	bumpBidderSql, args, _ := r.SqlBuilder.
		Update("users").
		Set("total_bids", squirrel.Expr("total_bids + ?", 1)).
		Where("id = ?", bid.BidderID).
		ToSql()

	if _, err = tx.Exec(bumpBidderSql, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return err
	}

	return tx.Commit()
}

// GetBidsByListing returns bids for a listing, newest first
func (r *AuctionRepo) GetBidsByListing(listingID string, limit int) ([]model.Bid, error) {
	builder := r.SqlBuilder.
		Select(bidColumns).
		From("bids").
		Where("listing_id = ?", listingID).
		OrderBy("created_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	querySql, args, _ := builder.ToSql()

	rows, err := r.Database.Query(querySql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := make([]model.Bid, 0)
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return bids, err
		}
		bids = append(bids, bid)
	}
	if err = rows.Err(); err != nil {
		return bids, err
	}
	return bids, nil
}

// GetHighestActiveBid returns the highest active bid for a listing; equal
// amounts resolve to the earliest-created bid.
func (r *AuctionRepo) GetHighestActiveBid(listingID string) (model.Bid, error) {
	querySql, args, _ := r.SqlBuilder.
		Select(bidColumns).
		From("bids").
		Where("listing_id = ?", listingID).
		Where("status = ?", string(model.BidStatusActive)).
		OrderBy("amount DESC", "created_at ASC").
		Limit(1).
		ToSql()

	bid, err := scanBid(r.Database.QueryRow(querySql, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Bid{}, fmt.Errorf("get highest active bid for listing %s: %w", listingID, auctionerrors.ErrNoBids)
		}
		return model.Bid{}, err
	}
	return bid, nil
}

// UpdateBidStatus sets the status of a single bid
func (r *AuctionRepo) UpdateBidStatus(bidID string, status model.BidStatus) error {
	updateSql, args, _ := r.SqlBuilder.
		Update("bids").
		Set("status", string(status)).
		Where("id = ?", bidID).
		ToSql()

	res, err := r.Database.Exec(updateSql, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("update bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	return nil
}

// GetDistinctBidders returns the distinct bidder ids for a listing
func (r *AuctionRepo) GetDistinctBidders(listingID string) ([]string, error) {
	querySql, args, _ := r.SqlBuilder.
		Select("DISTINCT bidder_id").
		From("bids").
		Where("listing_id = ?", listingID).
		ToSql()

	rows, err := r.Database.Query(querySql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bidders := make([]string, 0)
	for rows.Next() {
		var bidderID string
		if err := rows.Scan(&bidderID); err != nil {
			return bidders, err
		}
		bidders = append(bidders, bidderID)
	}
	if err = rows.Err(); err != nil {
		return bidders, err
	}
	return bidders, nil
}

// SettleListingSold finalizes an expired listing in favor of winningBid in one
// transaction: listing sold, winning bid won, other open bids lost, and
// seller/winner/loser stats adjusted. Refuses with ErrAlreadySettled once the
// listing has left active.
func (r *AuctionRepo) SettleListingSold(listingID string, winningBid model.Bid) error {
	tx, err := r.Database.Begin()
	if err != nil {
		return err
	}

	sellSql, args, _ := r.SqlBuilder.
		Update("listings").
		Set("status", string(model.ListingStatusSold)).
		Set("winner_id", winningBid.BidderID).
		Set("final_price", winningBid.Amount).
		Set("version", squirrel.Expr("version + ?", 1)).
		Where("id = ?", listingID).
		Where("status = ?", string(model.ListingStatusActive)).
		Suffix("RETURNING seller_id").
		ToSql()

	var sellerID string
	if err = tx.QueryRow(sellSql, args...).Scan(&sellerID); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		if errors.Is(err, sql.ErrNoRows) {
			return r.classifySettled(listingID)
		}
		return err
	}

	// Losing bidders are collected before the status flip below wipes them out.
	losersSql, args, _ := r.SqlBuilder.
		Select("DISTINCT bidder_id").
		From("bids").
		Where("listing_id = ?", listingID).
		Where("id <> ?", winningBid.BidID).
		Where(squirrel.Eq{"status": []string{string(model.BidStatusActive), string(model.BidStatusOverbid)}}).
		Where("bidder_id <> ?", winningBid.BidderID).
		ToSql()

	loserRows, err := tx.Query(losersSql, args...)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return err
	}
	losers := make([]string, 0)
	for loserRows.Next() {
		var loserID string
		if err := loserRows.Scan(&loserID); err != nil {
			loserRows.Close()
			if e := tx.Rollback(); e != nil {
				return e
			}
			return err
		}
		losers = append(losers, loserID)
	}
	if err = loserRows.Err(); err != nil {
		loserRows.Close()
		if e := tx.Rollback(); e != nil {
			return e
		}
		return err
	}
	loserRows.Close()

	wonSql, args, _ := r.SqlBuilder.
		Update("bids").
		Set("status", string(model.BidStatusWon)).
		Where("id = ?", winningBid.BidID).
		ToSql()

	if _, err = tx.Exec(wonSql, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return err
	}

	lostSql, args, _ := r.SqlBuilder.
		Update("bids").
		Set("status", string(model.BidStatusLost)).
		Where("listing_id = ?", listingID).
		Where("id <> ?", winningBid.BidID).
		Where(squirrel.Eq{"status": []string{string(model.BidStatusActive), string(model.BidStatusOverbid)}}).
		ToSql()

	if _, err = tx.Exec(lostSql, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return err
	}

	sellerSql, args, _ := r.SqlBuilder.
		Update("users").
		Set("total_sold", squirrel.Expr("total_sold + ?", 1)).
		Set("total_revenue", squirrel.Expr("total_revenue + ?", winningBid.Amount)).
		Where("id = ?", sellerID).
		ToSql()

	if _, err = tx.Exec(sellerSql, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return err
	}

	winnerSql, args, _ := r.SqlBuilder.
		Update("users").
		Set("total_wins", squirrel.Expr("total_wins + ?", 1)).
		Where("id = ?", winningBid.BidderID).
		ToSql()

	if _, err = tx.Exec(winnerSql, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return err
	}

	if len(losers) > 0 {
		losersStatSql, args, _ := r.SqlBuilder.
			Update("users").
			Set("total_losses", squirrel.Expr("total_losses + ?", 1)).
			Where(squirrel.Eq{"id": losers}).
			ToSql()

		if _, err = tx.Exec(losersStatSql, args...); err != nil {
			if e := tx.Rollback(); e != nil {
				return e
			}
			return err
		}
	}

	return tx.Commit()
}

// classifySettled distinguishes a missing listing from an already-settled one
func (r *AuctionRepo) classifySettled(listingID string) error {
	statusSql, args, _ := r.SqlBuilder.
		Select("status").
		From("listings").
		Where("id = ?", listingID).
		ToSql()

	var status string
	if err := r.Database.QueryRow(statusSql, args...).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("settle listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
		}
		return err
	}
	return fmt.Errorf("settle listing %s with status %s: %w", listingID, status, auctionerrors.ErrAlreadySettled)
}

// SettleListingUnsold closes an expired listing that attracted no bids
func (r *AuctionRepo) SettleListingUnsold(listingID string) error {
	unsoldSql, args, _ := r.SqlBuilder.
		Update("listings").
		Set("status", string(model.ListingStatusUnsold)).
		Set("version", squirrel.Expr("version + ?", 1)).
		Where("id = ?", listingID).
		Where("status = ?", string(model.ListingStatusActive)).
		ToSql()

	res, err := r.Database.Exec(unsoldSql, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return r.classifySettled(listingID)
	}
	return nil
}

// GetUserByID returns the user with the given id
func (r *AuctionRepo) GetUserByID(userID string) (model.User, error) {
	getUserSql, args, _ := r.SqlBuilder.
		Select("id, name, email, total_bids, total_wins, total_losses, total_sold, total_revenue, seller_rating, created_at").
		From("users").
		Where("id = ?", userID).
		ToSql()

	var u model.User
	err := r.Database.QueryRow(getUserSql, args...).Scan(&u.UserID, &u.Name, &u.Email,
		&u.TotalBids, &u.TotalWins, &u.TotalLosses, &u.TotalSold, &u.TotalRevenue,
		&u.SellerRating, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
		}
		return model.User{}, err
	}
	return u, nil
}

// AddToWatchlist inserts the pair and increments watch_count in one
// transaction. The unique constraint on (user_id, listing_id) turns a
// duplicate add into ErrAlreadyWatched before the counter moves.
func (r *AuctionRepo) AddToWatchlist(userID, listingID string) error {
	tx, err := r.Database.Begin()
	if err != nil {
		return err
	}

	insertSql, args, _ := r.SqlBuilder.
		Insert("watchlist").
		Columns("user_id", "listing_id", "added_at").
		Values(userID, listingID, time.Now().UTC()).
		ToSql()

	if _, err = tx.Exec(insertSql, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("watch listing %s for user %s: %w", listingID, userID, auctionerrors.ErrAlreadyWatched)
		}
		return err
	}

	bumpSql, args, _ := r.SqlBuilder.
		Update("listings").
		Set("watch_count", squirrel.Expr("watch_count + ?", 1)).
		Where("id = ?", listingID).
		ToSql()

	res, err := tx.Exec(bumpSql, args...)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return err
	}
	if affected == 0 {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return fmt.Errorf("watch listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}

	return tx.Commit()
}

// RemoveFromWatchlist deletes the pair and decrements watch_count
func (r *AuctionRepo) RemoveFromWatchlist(userID, listingID string) error {
	tx, err := r.Database.Begin()
	if err != nil {
		return err
	}

	deleteSql, args, _ := r.SqlBuilder.
		Delete("watchlist").
		Where("user_id = ?", userID).
		Where("listing_id = ?", listingID).
		ToSql()

	res, err := tx.Exec(deleteSql, args...)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return err
	}
	if affected == 0 {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return fmt.Errorf("unwatch listing %s for user %s: %w", listingID, userID, auctionerrors.ErrNotWatched)
	}

	dropSql, args, _ := r.SqlBuilder.
		Update("listings").
		Set("watch_count", squirrel.Expr("watch_count - ?", 1)).
		Where("id = ?", listingID).
		ToSql()

	if _, err = tx.Exec(dropSql, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}
		return err
	}

	return tx.Commit()
}

// GetWatchlistByUser returns the listings on a user's watchlist, most recently
// added first.
func (r *AuctionRepo) GetWatchlistByUser(userID string) ([]model.Listing, error) {
	querySql, args, _ := r.SqlBuilder.
		Select("listings.id, listings.title, listings.description, listings.category_id, listings.seller_id, listings.start_price, listings.current_price, listings.min_increment, listings.buy_now_price, listings.status, listings.start_time, listings.end_time, listings.auto_extend_enabled, listings.auto_extend_minutes, listings.view_count, listings.bid_count, listings.watch_count, listings.winner_id, listings.final_price, listings.version, listings.created_at").
		From("watchlist").
		InnerJoin("listings on listings.id = watchlist.listing_id").
		Where("watchlist.user_id = ?", userID).
		OrderBy("watchlist.added_at DESC").
		ToSql()

	return r.queryListings(querySql, args)
}

// CreateNotification stores a notification
func (r *AuctionRepo) CreateNotification(n model.Notification) error {
	insertSql, args, _ := r.SqlBuilder.
		Insert("notifications").
		Columns("id", "recipient_id", "type", "title", "message", "listing_id", "bid_id", "is_read", "created_at").
		Values(n.NotificationID, n.RecipientID, string(n.Type), n.Title, n.Message, n.ListingID, n.BidID, n.IsRead, n.CreatedAt).
		ToSql()

	_, err := r.Database.Exec(insertSql, args...)
	return err
}

// GetNotificationsByUser returns a user's notifications, newest first
func (r *AuctionRepo) GetNotificationsByUser(userID string, limit int) ([]model.Notification, error) {
	builder := r.SqlBuilder.
		Select("id, recipient_id, type, title, message, listing_id, bid_id, is_read, created_at").
		From("notifications").
		Where("recipient_id = ?", userID).
		OrderBy("created_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	querySql, args, _ := builder.ToSql()

	rows, err := r.Database.Query(querySql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifs := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		var notifType string
		if err := rows.Scan(&n.NotificationID, &n.RecipientID, &notifType, &n.Title, &n.Message, &n.ListingID, &n.BidID, &n.IsRead, &n.CreatedAt); err != nil {
			return notifs, err
		}
		n.Type = model.NotificationType(notifType)
		notifs = append(notifs, n)
	}
	if err = rows.Err(); err != nil {
		return notifs, err
	}
	return notifs, nil
}

// HasNotification reports whether the recipient already has a notification of
// the given type for the listing. Answered by an indexed EXISTS query.
func (r *AuctionRepo) HasNotification(userID string, notifType model.NotificationType, listingID string) (bool, error) {
	existsSql, args, _ := r.SqlBuilder.
		Select("1").
		From("notifications").
		Where("recipient_id = ?", userID).
		Where("type = ?", string(notifType)).
		Where("listing_id = ?", listingID).
		Limit(1).
		ToSql()

	var one int
	err := r.Database.QueryRow(existsSql, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MarkNotificationRead marks one notification read, scoped to its recipient
func (r *AuctionRepo) MarkNotificationRead(notificationID, userID string) error {
	updateSql, args, _ := r.SqlBuilder.
		Update("notifications").
		Set("is_read", true).
		Where("id = ?", notificationID).
		Where("recipient_id = ?", userID).
		ToSql()

	res, err := r.Database.Exec(updateSql, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("mark notification %s read for user %s: %w", notificationID, userID, auctionerrors.ErrNotificationNotFound)
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of a user as read
func (r *AuctionRepo) MarkAllNotificationsRead(userID string) (int, error) {
	updateSql, args, _ := r.SqlBuilder.
		Update("notifications").
		Set("is_read", true).
		Where("recipient_id = ?", userID).
		Where("is_read = ?", false).
		ToSql()

	res, err := r.Database.Exec(updateSql, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// CountUnreadNotifications returns the number of unread notifications for a user
func (r *AuctionRepo) CountUnreadNotifications(userID string) (int, error) {
	countSql, args, _ := r.SqlBuilder.
		Select("count(*)").
		From("notifications").
		Where("recipient_id = ?", userID).
		Where("is_read = ?", false).
		ToSql()

	var count int
	if err := r.Database.QueryRow(countSql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
