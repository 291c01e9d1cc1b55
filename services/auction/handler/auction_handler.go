package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	bidding "auctionhub/internal/biddingService"
	model "auctionhub/internal/models"
	"auctionhub/services/auction/helpers"
	"auctionhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AuctionServiceInterface interface {
	PlaceBid(listingID, bidderID string, amount decimal.Decimal, isAutoBid bool, maxAmount *decimal.Decimal) (bidding.BidResult, error)
	GetBidHistory(listingID string, limit int) ([]model.Bid, error)
	GetListing(listingID string) (model.Listing, error)
	AddToWatchlist(userID, listingID string) error
	RemoveFromWatchlist(userID, listingID string) error
	GetWatchlist(userID string) ([]model.Listing, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// PlaceBidHandler handles POST /listings/:listing_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	result, err := h.service.PlaceBid(listingID, req.BidderID, req.Amount, req.IsAutoBid, req.MaxAmount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("PlaceBidHandler: failed to place bid", map[string]any{
			"handler":    "PlaceBidHandler",
			"listing_id": listingID,
			"bidder_id":  req.BidderID,
			"error":      err.Error(),
		})
		return
	}

	if result.Sold {
		resp := helpers.SoldListingResponse{
			ListingID:  result.Listing.ListingID,
			Title:      result.Listing.Title,
			Status:     string(result.Listing.Status),
			WinnerID:   result.Listing.WinnerID,
			FinalPrice: *result.Listing.FinalPrice,
		}
		utils.JSONResponse(c, http.StatusOK, resp, "listing sold at buy-now price")
		helpers.LogSuccess("PlaceBidHandler", "listing sold at buy-now price", map[string]any{
			"listing_id": listingID,
			"winner_id":  req.BidderID,
		})
		return
	}

	resp := helpers.BidResponse{
		BidID:     result.Bid.BidID,
		ListingID: result.Bid.ListingID,
		BidderID:  result.Bid.BidderID,
		Amount:    result.Bid.Amount,
		Status:    string(result.Bid.Status),
		IsAutoBid: result.Bid.IsAutoBid,
		CreatedAt: result.Bid.CreatedAt.UTC().Format(time.RFC3339),
	}

	utils.JSONResponse(c, http.StatusCreated, resp, "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     result.Bid.BidID,
		"listing_id": listingID,
		"bidder_id":  req.BidderID,
		"amount":     result.Bid.Amount.String(),
	})
}

// GetBidHistoryHandler handles GET /listings/:listing_id/bids
func (h *AuctionHandler) GetBidHistoryHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			helpers.HandleBindError(c, "GetBidHistoryHandler", fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}

	bids, err := h.service.GetBidHistory(listingID, limit)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidHistoryHandler: error retrieving bids", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	if bids == nil {
		bids = []model.Bid{}
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("GetBidHistoryHandler", "bids retrieved successfully", map[string]any{
		"listing_id": listingID,
		"count":      len(bids),
	})
}

// GetListingHandler handles GET /listings/:listing_id
func (h *AuctionHandler) GetListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	listing, err := h.service.GetListing(listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetListingHandler: error retrieving listing", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, listing, "listing retrieved successfully")
}

// AddToWatchlistHandler handles POST /listings/:listing_id/watch
func (h *AuctionHandler) AddToWatchlistHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	var req helpers.WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AddToWatchlistHandler", err)
		return
	}

	if err := h.service.AddToWatchlist(req.UserID, listingID); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("AddToWatchlistHandler: failed to watch listing", map[string]any{
			"listing_id": listingID,
			"user_id":    req.UserID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, gin.H{"listing_id": listingID, "user_id": req.UserID}, "added to watchlist")
	helpers.LogSuccess("AddToWatchlistHandler", "added to watchlist", map[string]any{
		"listing_id": listingID,
		"user_id":    req.UserID,
	})
}

// RemoveFromWatchlistHandler handles DELETE /listings/:listing_id/watch
func (h *AuctionHandler) RemoveFromWatchlistHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	var req helpers.WatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RemoveFromWatchlistHandler", err)
		return
	}

	if err := h.service.RemoveFromWatchlist(req.UserID, listingID); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("RemoveFromWatchlistHandler: failed to unwatch listing", map[string]any{
			"listing_id": listingID,
			"user_id":    req.UserID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{"listing_id": listingID, "user_id": req.UserID}, "removed from watchlist")
}

// GetWatchlistHandler handles GET /users/:user_id/watchlist
func (h *AuctionHandler) GetWatchlistHandler(c *gin.Context) {
	userID := c.Param("user_id")

	listings, err := h.service.GetWatchlist(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetWatchlistHandler: error retrieving watchlist", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	if listings == nil {
		listings = []model.Listing{}
	}

	utils.JSONResponse(c, http.StatusOK, listings, "watchlist retrieved successfully")
}
