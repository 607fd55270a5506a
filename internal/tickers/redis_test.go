package tickers

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/seenimoa/sendwallet/pkg/models"
)

func TestTickerFieldsRoundTrip(t *testing.T) {
	in := models.Ticker{
		Address:       ethAddress,
		Symbol:        "ETH",
		Price:         "2000.00",
		PercentChange: "-1.25",
		Currency:      "USD",
		Source:        "feed",
		UpdatedAt:     time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
	}
	fields := make(map[string]string)
	for k, v := range tickerFields(in) {
		fields[k] = v.(string)
	}
	out := tickerFromFields(fields)
	if out != in {
		t.Errorf("round trip: got %+v, want %+v", out, in)
	}
}

// Integration test; needs a live Redis.
func TestRedisStoreIntegration(t *testing.T) {
	url := os.Getenv("SENDWALLET_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SENDWALLET_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	prefix := "sendwallet-test:" + uuid.NewString() + ":"
	store, err := DialRedis(ctx, url, "", time.Minute, WithKeyPrefix(prefix))
	if err != nil {
		t.Fatalf("DialRedis() error: %v", err)
	}
	defer store.Close()

	eth := models.Ticker{Address: "0xABCDEF", Symbol: "ETH", Price: "2000", UpdatedAt: time.Now().UTC().Truncate(time.Second)}
	if err := store.Save(ctx, []models.Ticker{eth}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	defer store.Delete(ctx, eth.Address)

	got, ok := store.Ticker("0xabcdef")
	if !ok {
		t.Fatal("saved ticker should be found")
	}
	if got.Price != "2000" {
		t.Errorf("Price: got %q, want %q", got.Price, "2000")
	}

	if _, err := store.Get(ctx, "0xmissing"); !errors.Is(err, redis.Nil) {
		t.Errorf("missing ticker: got %v, want redis.Nil", err)
	}
	if _, ok := store.Ticker("0xmissing"); ok {
		t.Error("missing ticker should read as not found")
	}
}
