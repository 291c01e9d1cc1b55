package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auctionhub/internal/auctionerrors"
	bidding "auctionhub/internal/biddingService"
	model "auctionhub/internal/models"
	"auctionhub/services/auction/helpers"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// decimalEq matches a decimal argument by value, not representation
type decimalEq struct{ want decimal.Decimal }

func (m decimalEq) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalEq) String() string {
	return fmt.Sprintf("is decimal %s", m.want)
}

func performRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

// Test PlaceBidHandler
func TestPlaceBidHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockAuctionServiceInterface(ctrl)
	handler := NewAuctionHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/listings/:listing_id/bids", handler.PlaceBidHandler)

	now := time.Now().UTC()

	tests := []struct {
		name           string
		listingID      string
		requestBody    any
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
		validateData   func(t *testing.T, data map[string]any)
	}{
		{
			name:      "success_valid_bid",
			listingID: "listing1",
			requestBody: helpers.PlaceBidRequest{
				BidderID: "user1",
				Amount:   decimal.NewFromInt(110),
			},
			mockSetup: func() {
				bid := model.Bid{
					BidID:     uuid.NewString(),
					ListingID: "listing1",
					BidderID:  "user1",
					Amount:    decimal.NewFromInt(110),
					Status:    model.BidStatusActive,
					CreatedAt: now,
				}
				mockService.EXPECT().
					PlaceBid("listing1", "user1", decimalEq{decimal.NewFromInt(110)}, false, nil).
					Return(bidding.BidResult{Bid: &bid, Listing: model.Listing{ListingID: "listing1"}}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "bid placed successfully",
			validateData: func(t *testing.T, data map[string]any) {
				bidID := data["bid_id"].(string)
				_, parseErr := uuid.Parse(bidID)
				require.NoError(t, parseErr, "BidID should be a valid UUID")
				require.Equal(t, "listing1", data["listing_id"])
				require.Equal(t, "user1", data["bidder_id"])
				require.Equal(t, "110", data["amount"])
				require.Equal(t, "active", data["status"])
			},
		},
		{
			name:      "success_buy_now",
			listingID: "listing2",
			requestBody: helpers.PlaceBidRequest{
				BidderID: "user1",
				Amount:   decimal.NewFromInt(500),
			},
			mockSetup: func() {
				final := decimal.NewFromInt(500)
				mockService.EXPECT().
					PlaceBid("listing2", "user1", decimalEq{decimal.NewFromInt(500)}, false, nil).
					Return(bidding.BidResult{
						Listing: model.Listing{
							ListingID:  "listing2",
							Title:      "Mountain bike",
							Status:     model.ListingStatusSold,
							WinnerID:   "user1",
							FinalPrice: &final,
						},
						Sold: true,
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "listing sold at buy-now price",
			validateData: func(t *testing.T, data map[string]any) {
				require.Equal(t, "sold", data["status"])
				require.Equal(t, "user1", data["winner_id"])
				require.Equal(t, "500", data["final_price"])
			},
		},
		{
			name:           "invalid_json",
			listingID:      "listing1",
			requestBody:    `{invalid json}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:      "missing_bidder_id",
			listingID: "listing1",
			requestBody: helpers.PlaceBidRequest{
				Amount: decimal.NewFromInt(110),
			},
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:      "bid_too_low",
			listingID: "listing1",
			requestBody: helpers.PlaceBidRequest{
				BidderID: "user1",
				Amount:   decimal.NewFromInt(105),
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("listing1", "user1", decimalEq{decimal.NewFromInt(105)}, false, nil).
					Return(bidding.BidResult{}, fmt.Errorf("service: %w - bid must be at least 110", auctionerrors.ErrBidTooLow))
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "bid amount too low",
		},
		{
			name:      "listing_not_found",
			listingID: "missing",
			requestBody: helpers.PlaceBidRequest{
				BidderID: "user1",
				Amount:   decimal.NewFromInt(110),
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("missing", "user1", decimalEq{decimal.NewFromInt(110)}, false, nil).
					Return(bidding.BidResult{}, auctionerrors.ErrListingNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "listing not found",
		},
		{
			name:      "auction_ended",
			listingID: "listing1",
			requestBody: helpers.PlaceBidRequest{
				BidderID: "user2",
				Amount:   decimal.NewFromInt(120),
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("listing1", "user2", decimalEq{decimal.NewFromInt(120)}, false, nil).
					Return(bidding.BidResult{}, auctionerrors.ErrAuctionEnded)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "auction has ended",
		},
		{
			name:      "internal_error",
			listingID: "listing1",
			requestBody: helpers.PlaceBidRequest{
				BidderID: "user3",
				Amount:   decimal.NewFromInt(120),
			},
			mockSetup: func() {
				mockService.EXPECT().
					PlaceBid("listing1", "user3", decimalEq{decimal.NewFromInt(120)}, false, nil).
					Return(bidding.BidResult{}, errors.New("repo write failed"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			w := performRequest(router, http.MethodPost, "/listings/"+tc.listingID+"/bids", tc.requestBody)
			require.Equal(t, tc.expectedStatus, w.Code)

			envelope := decodeEnvelope(t, w)
			require.Equal(t, tc.expectedMsg, envelope["message"])

			if tc.validateData != nil {
				data, ok := envelope["data"].(map[string]any)
				require.True(t, ok, "response data should be an object")
				tc.validateData(t, data)
			}
		})
	}
}

// Test GetBidHistoryHandler
func TestGetBidHistoryHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockAuctionServiceInterface(ctrl)
	handler := NewAuctionHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/listings/:listing_id/bids", handler.GetBidHistoryHandler)

	t.Run("success_with_limit", func(t *testing.T) {
		bids := []model.Bid{
			{BidID: "bid2", ListingID: "listing1", BidderID: "user2", Amount: decimal.NewFromInt(130)},
			{BidID: "bid1", ListingID: "listing1", BidderID: "user1", Amount: decimal.NewFromInt(110)},
		}
		mockService.EXPECT().GetBidHistory("listing1", 10).Return(bids, nil)

		w := performRequest(router, http.MethodGet, "/listings/listing1/bids?limit=10", nil)
		require.Equal(t, http.StatusOK, w.Code)

		envelope := decodeEnvelope(t, w)
		data, ok := envelope["data"].([]any)
		require.True(t, ok)
		require.Len(t, data, 2)
	})

	t.Run("success_no_bids", func(t *testing.T) {
		mockService.EXPECT().GetBidHistory("listing1", 0).Return(nil, nil)

		w := performRequest(router, http.MethodGet, "/listings/listing1/bids", nil)
		require.Equal(t, http.StatusOK, w.Code)

		envelope := decodeEnvelope(t, w)
		data, ok := envelope["data"].([]any)
		require.True(t, ok, "nil bids should serialize as an empty array")
		require.Empty(t, data)
	})

	t.Run("invalid_limit", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/listings/listing1/bids?limit=abc", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// Test GetListingHandler
func TestGetListingHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockAuctionServiceInterface(ctrl)
	handler := NewAuctionHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/listings/:listing_id", handler.GetListingHandler)

	t.Run("success", func(t *testing.T) {
		mockService.EXPECT().GetListing("listing1").Return(model.Listing{
			ListingID: "listing1",
			Title:     "Vintage camera",
			Status:    model.ListingStatusActive,
		}, nil)

		w := performRequest(router, http.MethodGet, "/listings/listing1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		envelope := decodeEnvelope(t, w)
		data := envelope["data"].(map[string]any)
		require.Equal(t, "listing1", data["listing_id"])
		require.Equal(t, "active", data["status"])
	})

	t.Run("not_found", func(t *testing.T) {
		mockService.EXPECT().GetListing("missing").Return(model.Listing{}, auctionerrors.ErrListingNotFound)

		w := performRequest(router, http.MethodGet, "/listings/missing", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

// Test watchlist handlers
func TestWatchlistHandlers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := NewMockAuctionServiceInterface(ctrl)
	handler := NewAuctionHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/listings/:listing_id/watch", handler.AddToWatchlistHandler)
	router.DELETE("/listings/:listing_id/watch", handler.RemoveFromWatchlistHandler)
	router.GET("/users/:user_id/watchlist", handler.GetWatchlistHandler)

	t.Run("watch_success", func(t *testing.T) {
		mockService.EXPECT().AddToWatchlist("user1", "listing1").Return(nil)

		w := performRequest(router, http.MethodPost, "/listings/listing1/watch", helpers.WatchRequest{UserID: "user1"})
		require.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("watch_duplicate", func(t *testing.T) {
		mockService.EXPECT().AddToWatchlist("user1", "listing1").Return(auctionerrors.ErrAlreadyWatched)

		w := performRequest(router, http.MethodPost, "/listings/listing1/watch", helpers.WatchRequest{UserID: "user1"})
		require.Equal(t, http.StatusConflict, w.Code)

		envelope := decodeEnvelope(t, w)
		require.Equal(t, "listing already on watchlist", envelope["message"])
	})

	t.Run("watch_missing_user", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/listings/listing1/watch", helpers.WatchRequest{})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unwatch_success", func(t *testing.T) {
		mockService.EXPECT().RemoveFromWatchlist("user1", "listing1").Return(nil)

		w := performRequest(router, http.MethodDelete, "/listings/listing1/watch", helpers.WatchRequest{UserID: "user1"})
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unwatch_not_watched", func(t *testing.T) {
		mockService.EXPECT().RemoveFromWatchlist("user1", "listing1").Return(auctionerrors.ErrNotWatched)

		w := performRequest(router, http.MethodDelete, "/listings/listing1/watch", helpers.WatchRequest{UserID: "user1"})
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("get_watchlist", func(t *testing.T) {
		mockService.EXPECT().GetWatchlist("user1").Return([]model.Listing{{ListingID: "listing1"}}, nil)

		w := performRequest(router, http.MethodGet, "/users/user1/watchlist", nil)
		require.Equal(t, http.StatusOK, w.Code)

		envelope := decodeEnvelope(t, w)
		data := envelope["data"].([]any)
		require.Len(t, data, 1)
	})

	t.Run("get_watchlist_empty", func(t *testing.T) {
		mockService.EXPECT().GetWatchlist("user2").Return(nil, nil)

		w := performRequest(router, http.MethodGet, "/users/user2/watchlist", nil)
		require.Equal(t, http.StatusOK, w.Code)

		envelope := decodeEnvelope(t, w)
		data, ok := envelope["data"].([]any)
		require.True(t, ok)
		require.Empty(t, data)
	})
}
