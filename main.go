package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bidding "auctionhub/internal/biddingService"
	model "auctionhub/internal/models"
	"auctionhub/internal/notification"
	"auctionhub/internal/repository"
	"auctionhub/internal/repository/pgdb"
	"auctionhub/internal/server"
	"auctionhub/internal/sweep"
	"auctionhub/pkg/postgres"
	"auctionhub/utils"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
)

func main() {
	repo, cleanup := setupRepository()
	defer cleanup()

	notificationSvc := notification.NewService(repo, notification.LogMailer{})
	biddingSvc := bidding.NewBiddingService(repo, notificationSvc)

	sweeper := sweep.NewSweeper(repo, notificationSvc, nil)
	scheduler := sweep.NewScheduler(sweeper, sweep.DefaultCloseInterval, sweep.DefaultRemindInterval)
	scheduler.Start()

	router := server.SetupRouter(biddingSvc, notificationSvc)

	httpServer := &http.Server{
		Addr:    getPort(),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		utils.Info("Starting auction server", map[string]any{"addr": httpServer.Addr})
		serverErr <- httpServer.ListenAndServe()
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		utils.Info("Got signal, shutting down", map[string]any{"signal": s.String()})
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			utils.Error("Server error", map[string]any{"error": err.Error()})
		}
	}

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		utils.Error("Shutdown error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	utils.Info("Successful shutdown", nil)
}

// setupRepository picks the backing store: Postgres when POSTGRES_CONN is
// set, otherwise an in-memory repo seeded with sample data.
func setupRepository() (repository.AuctionDB, func()) {
	url := os.Getenv("POSTGRES_CONN")
	if url == "" {
		repo := repository.NewMemoryRepo()
		prepopulate(repo)
		return repo, func() {}
	}

	utils.Info("Connecting database", nil)
	postgresDB, err := postgres.NewDB(url)
	if err != nil {
		utils.Fatal("Error occurred while connecting to db", map[string]any{"error": err.Error()})
	}

	runMigrations(postgresDB)

	return pgdb.NewAuctionRepo(postgresDB), func() { postgresDB.Close() }
}

func runMigrations(postgresDB *postgres.Postgres) {
	utils.Info("Running migrations", nil)
	driver, err := pgmigrate.WithInstance(postgresDB.Database, &pgmigrate.Config{})
	if err != nil {
		utils.Fatal("Migration driver error", map[string]any{"error": err.Error()})
	}

	migrations, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		utils.Fatal("Migration setup error", map[string]any{"error": err.Error()})
	}

	if err := migrations.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			utils.Info("No change made by migration scripts", nil)
		} else {
			utils.Fatal("Migration error", map[string]any{"error": err.Error()})
		}
	}
}

// prepopulate adds sample users and listings to the in-memory repo
func prepopulate(repo *repository.MemoryRepo) {
	now := time.Now().UTC()

	users := []model.User{
		{UserID: "user1", Name: "Alice", Email: "alice@example.com"},
		{UserID: "user2", Name: "Bob", Email: "bob@example.com"},
		{UserID: "user3", Name: "Carol", Email: "carol@example.com"},
	}
	for _, user := range users {
		repo.AddUser(user)
	}

	buyNow := decimal.NewFromInt(500)
	listings := []model.Listing{
		{
			ListingID:    "listing1",
			Title:        "Vintage camera",
			Description:  "35mm rangefinder in working condition",
			CategoryID:   "electronics",
			SellerID:     "user1",
			StartPrice:   decimal.NewFromInt(100),
			MinIncrement: decimal.NewFromInt(10),
			Status:       model.ListingStatusActive,
			StartTime:    now,
			EndTime:      now.Add(24 * time.Hour),
		},
		{
			ListingID:         "listing2",
			Title:             "Mountain bike",
			Description:       "Hardtail, medium frame",
			CategoryID:        "sports",
			SellerID:          "user2",
			StartPrice:        decimal.NewFromInt(200),
			MinIncrement:      decimal.NewFromInt(25),
			BuyNowPrice:       &buyNow,
			Status:            model.ListingStatusActive,
			StartTime:         now,
			EndTime:           now.Add(48 * time.Hour),
			AutoExtendEnabled: true,
			AutoExtendMinutes: 10,
		},
		{
			ListingID:    "listing3",
			Title:        "First edition novel",
			Description:  "Good condition, minor shelf wear",
			CategoryID:   "books",
			SellerID:     "user3",
			StartPrice:   decimal.NewFromInt(50),
			MinIncrement: decimal.NewFromInt(5),
			Status:       model.ListingStatusActive,
			StartTime:    now,
			EndTime:      now.Add(2 * time.Hour),
		},
	}
	for _, listing := range listings {
		repo.AddListing(listing)
	}
}

// getPort returns the server port from env or defaults to ":8080"
func getPort() string {
	if p := os.Getenv("PORT"); p != "" {
		return fmt.Sprintf(":%s", p)
	}
	return ":8080"
}
