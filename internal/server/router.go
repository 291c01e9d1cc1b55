package server

import (
	bidding "auctionhub/internal/biddingService"
	"auctionhub/internal/notification"
	auctionhandler "auctionhub/services/auction/handler"
	notificationhandler "auctionhub/services/notification/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(biddingService *bidding.BiddingService, notificationService *notification.Service) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := auctionhandler.NewAuctionHandler(biddingService)
	notificationHandler := notificationhandler.NewNotificationHandler(notificationService)

	listings := router.Group("/listings")
	{
		listings.GET("/:listing_id", auctionHandler.GetListingHandler)
		listings.POST("/:listing_id/bids", auctionHandler.PlaceBidHandler)
		listings.GET("/:listing_id/bids", auctionHandler.GetBidHistoryHandler)
		listings.POST("/:listing_id/watch", auctionHandler.AddToWatchlistHandler)
		listings.DELETE("/:listing_id/watch", auctionHandler.RemoveFromWatchlistHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/watchlist", auctionHandler.GetWatchlistHandler)
		users.GET("/:user_id/notifications", notificationHandler.ListNotificationsHandler)
		users.GET("/:user_id/notifications/unread-count", notificationHandler.UnreadCountHandler)
		users.POST("/:user_id/notifications/read-all", notificationHandler.MarkAllReadHandler)
	}

	notifications := router.Group("/notifications")
	{
		notifications.PATCH("/:notification_id/read", notificationHandler.MarkReadHandler)
	}

	return router
}
