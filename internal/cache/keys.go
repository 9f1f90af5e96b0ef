package cache

import (
	"strconv"
	"strings"
	"time"

	"coinlens-api/internal/config"
)

// Namespace is the Redis key prefix for the application.
const Namespace = "coinlens"

// TTLClass represents a config-driven TTL bucket.
type TTLClass string

const (
	TTLShort  TTLClass = "short"
	TTLMedium TTLClass = "medium"
	TTLLong   TTLClass = "long"
)

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts config TTLs (in seconds) into durations.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(cfg.Short, 10*time.Second),
		Medium: durationOrDefault(cfg.Medium, time.Minute),
		Long:   durationOrDefault(cfg.Long, 24*time.Hour),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

// Duration returns the configured duration for the given TTL class.
func (t TTLSet) Duration(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// --- Market Keys ------------------------------------------------------------

// SnapshotsKey holds the latest snapshot per asset for a provider.
func SnapshotsKey(provider string) string {
	return formatKey("snapshots", provider)
}

// SeriesKey holds the latest stored series for (provider, asset, window).
func SeriesKey(provider, assetID string, windowDays int) string {
	return formatKey("series", provider, assetID, strconv.Itoa(windowDays)+"d")
}

// --- View State Keys --------------------------------------------------------

// ViewStateKey holds one owner's msgpack-encoded view state.
func ViewStateKey(owner string) string {
	return formatKey("viewstate", owner)
}

// CollectorLockKey guards against overlapping collector runs.
func CollectorLockKey() string {
	return formatKey("lock", "collector")
}

// --- TTL Helpers ------------------------------------------------------------

// SnapshotsTTL returns the TTL for mirrored snapshot payloads.
func SnapshotsTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLLong)
}

// SnapshotsReadTTL is the shorter TTL used when a read repopulates the snapshot
// mirror, bounding how long a read that raced a store can serve older rows.
func SnapshotsReadTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLShort)
}

// SeriesTTL returns the TTL for mirrored series payloads.
func SeriesTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLLong)
}

// ViewStateTTL is zero: view state never expires.
func ViewStateTTL() time.Duration {
	return 0
}

// CollectorLockTTL bounds how long a crashed collector can hold the lock.
func CollectorLockTTL(ttl TTLSet) time.Duration {
	return ttl.Duration(TTLMedium) * 10
}
