package market_test

import (
	"os"
	"path/filepath"
	"testing"

	market "coinlens-api/pkg/market"
	_ "coinlens-api/pkg/market/exchanges/coingecko"
)

// Ensures env placeholders are expanded and durations parsed.
func TestMarketConfig_EnvExpansionAndDurations(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BASE_URL_VAR", "https://api.coingecko.test/api/v3")
	t.Setenv("CG_KEY", "secret")
	t.Setenv("TOUT", "9s")
	t.Setenv("HTTP_TOUT", "13s")

	yaml := []byte(`
default: cg
providers:
  cg:
    type: coingecko
    base_url: ${BASE_URL_VAR}
    api_key: ${CG_KEY}
    timeout: ${TOUT}
    http_timeout: ${HTTP_TOUT}
`)
	path := filepath.Join(dir, "market.yaml")
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := market.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	p := cfg.Providers["cg"]
	if p == nil {
		t.Fatalf("provider cg missing")
	}
	if p.BaseURL != "https://api.coingecko.test/api/v3" {
		t.Fatalf("BaseURL not expanded, got %q", p.BaseURL)
	}
	if p.APIKey != "secret" {
		t.Fatalf("APIKey not expanded, got %q", p.APIKey)
	}
	if p.Timeout.String() != "9s" || p.HTTPTimeout.String() != "13s" {
		t.Fatalf("durations not parsed, timeout=%s http_timeout=%s", p.Timeout, p.HTTPTimeout)
	}
}
