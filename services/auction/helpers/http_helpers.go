package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auctionhub/internal/auctionerrors"
	"auctionhub/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrListingNotFound):
		return http.StatusNotFound, "listing not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, auctionerrors.ErrNotificationNotFound):
		return http.StatusNotFound, "notification not found"
	case errors.Is(err, auctionerrors.ErrNotWatched):
		return http.StatusNotFound, "listing not on watchlist"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrAuctionEnded):
		return http.StatusConflict, "auction has ended"
	case errors.Is(err, auctionerrors.ErrListingUnavailable):
		return http.StatusConflict, "listing is not available for bidding"
	case errors.Is(err, auctionerrors.ErrAlreadyWatched):
		return http.StatusConflict, "listing already on watchlist"
	case errors.Is(err, auctionerrors.ErrVersionConflict):
		return http.StatusConflict, "listing was updated concurrently, please retry"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
