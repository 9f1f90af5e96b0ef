package coingecko

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dnaeon/go-vcr/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Replays a recorded /coins/markets call. Skips unless the cassette exists or
// RECORD_CASSETTES=1.
func TestClient_GetMarkets_Recorded(t *testing.T) {
	cassette := filepath.Join("testdata", "cassettes", "coingecko_markets")
	if _, err := os.Stat(cassette + ".yaml"); os.IsNotExist(err) {
		if os.Getenv("RECORD_CASSETTES") != "1" {
			t.Skipf("cassette missing; set RECORD_CASSETTES=1 to record: %s.yaml", cassette)
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(cassette), 0o755))
	}

	r, err := recorder.New(cassette)
	require.NoError(t, err)
	defer func() { _ = r.Stop() }()

	client := NewClient(WithHTTPClient(&http.Client{Transport: r}), WithAPIKey("", os.Getenv("COINGECKO_API_KEY")))
	entries, err := client.GetMarkets(context.Background(), MarketsRequest{PerPage: 5})
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "bitcoin", entries[0].ID)
	require.NotNil(t, entries[0].CurrentPrice)
	assert.Greater(t, *entries[0].CurrentPrice, 0.0)
}
