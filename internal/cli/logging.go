package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"coinlens-api/internal/config"
	"coinlens-api/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Listen: %s:%d", cfg.Host, cfg.Port),
		storeLine(cfg.Store),
		fmt.Sprintf("Redis: %s", presence(cfg.HasRedis())),
		fmt.Sprintf("TTL (short/medium/long): %ds / %ds / %ds", cfg.TTL.Short, cfg.TTL.Medium, cfg.TTL.Long),
		pollLine(cfg.Poll),
		sectionLine("Market config", cfg.Market),
		sectionLine("Collector config", cfg.Collector),
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func storeLine(store config.StoreConf) string {
	if strings.TrimSpace(store.DSN) == "" {
		return "Store: not configured (in-memory fallback cache)"
	}
	return fmt.Sprintf("Store: %s (auto-migrate %t)", store.Driver, store.AutoMigrate)
}

func pollLine(poll config.PollConf) string {
	if poll.Disabled {
		return "Snapshot refresh: disabled"
	}
	return fmt.Sprintf("Snapshot refresh: every %ds, top %d", poll.Interval, poll.Limit)
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Configured():
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
