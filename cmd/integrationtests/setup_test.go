package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	bidding "auctionhub/internal/biddingService"
	model "auctionhub/internal/models"
	"auctionhub/internal/notification"
	"auctionhub/internal/repository"
	"auctionhub/internal/server"
	"auctionhub/internal/sweep"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// fakeClock is a hand-driven clock shared by the service and the sweeper
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{t: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// TestEnv bundles the full stack over an in-memory repo: HTTP router, the
// repo itself for seeding and the sweeper so tests can settle auctions
// without waiting on the scheduler.
type TestEnv struct {
	Router  *gin.Engine
	Repo    *repository.MemoryRepo
	Sweeper *sweep.Sweeper
	Clock   *fakeClock
}

// SetupTestEnv wires the stack the same way main does, with a fake clock
func SetupTestEnv() *TestEnv {
	gin.SetMode(gin.TestMode)

	clock := newFakeClock(time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC))
	repo := repository.NewMemoryRepo()
	notifications := notification.NewService(repo, nil)
	service := bidding.NewBiddingServiceWithClock(repo, notifications, clock.Now)
	sweeper := sweep.NewSweeper(repo, notifications, clock.Now)
	router := server.SetupRouter(service, notifications)

	return &TestEnv{
		Router:  router,
		Repo:    repo,
		Sweeper: sweeper,
		Clock:   clock,
	}
}

// SeedUser adds a user to the repo
func (e *TestEnv) SeedUser(userID string) {
	e.Repo.AddUser(model.User{UserID: userID, Name: userID, Email: userID + "@example.com"})
}

// SeedListing adds an active listing closing after the given duration
func (e *TestEnv) SeedListing(listingID, sellerID string, startPrice, minIncrement int64, closesIn time.Duration) {
	now := e.Clock.Now()
	e.Repo.AddListing(model.Listing{
		ListingID:    listingID,
		Title:        listingID + " title",
		SellerID:     sellerID,
		StartPrice:   decimal.NewFromInt(startPrice),
		MinIncrement: decimal.NewFromInt(minIncrement),
		Status:       model.ListingStatusActive,
		StartTime:    now,
		EndTime:      now.Add(closesIn),
	})
}

// ExecuteRequestAndParse executes an HTTP request and parses the response
// envelope. For 2xx responses the data payload is returned; otherwise the
// whole envelope.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if w.Code >= 200 && w.Code < 300 {
			if data, ok := resp["data"].(map[string]any); ok {
				resp = data
			}
		}
	}

	return resp, w
}

// ExecuteRequestList is ExecuteRequestAndParse for endpoints returning arrays
func ExecuteRequestList(t *testing.T, router *gin.Engine, method, url string) ([]any, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, nil)
	router.ServeHTTP(w, req)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	data, _ := resp["data"].([]any)
	return data, w
}
