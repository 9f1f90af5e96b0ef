// Package collector implements the periodic batch collection: a snapshot of the
// top assets followed by a history fetch for the highest ranked few. Successful
// provider reads are written through to persistence by the fetcher itself.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"coinlens-api/pkg/market"
)

// Report summarises one collection run.
type Report struct {
	Success    bool      `json:"success"`
	Message    string    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
	Snapshots  int       `json:"coinsCollected"`
	Processed  int       `json:"processed"`
	Assets     []string  `json:"assets"`
	Failed     []string  `json:"failed,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"timestamp"`

	Err error `json:"-"`
}

// Job runs collections against a fetcher.
type Job struct {
	fetcher market.Fetcher
	cfg     Config
	now     func() time.Time
}

// NewJob builds a job. Zero-valued config fields take their defaults.
func NewJob(fetcher market.Fetcher, cfg Config) *Job {
	def := DefaultConfig()
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.TopN <= 0 {
		cfg.TopN = def.TopN
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = def.WindowDays
	}
	if cfg.IntervalDuration <= 0 {
		cfg.IntervalDuration = def.IntervalDuration
	}
	return &Job{fetcher: fetcher, cfg: cfg, now: time.Now}
}

// Config returns the effective configuration.
func (j *Job) Config() Config {
	return j.cfg
}

// Run fetches the snapshot, then each top asset's history in rank order. By
// default the first history failure aborts the run; ContinueOnError records
// the failure and moves on.
func (j *Job) Run(ctx context.Context) Report {
	logger := logx.WithContext(ctx)
	report := Report{StartedAt: j.now().UTC(), Assets: []string{}}
	finish := func(err error) Report {
		report.FinishedAt = j.now().UTC()
		report.Err = err
		report.Success = err == nil
		if err != nil {
			report.Error = err.Error()
			logger.Errorf("collector: run failed processed=%d err=%v", report.Processed, err)
		} else {
			report.Message = fmt.Sprintf("collected %d snapshots and %d histories", report.Snapshots, report.Processed)
			logger.Infof("collector: %s", report.Message)
		}
		return report
	}

	logger.Infof("collector: starting limit=%d top=%d days=%d", j.cfg.Limit, j.cfg.TopN, j.cfg.WindowDays)
	snapshots, err := j.fetcher.FetchSnapshot(ctx, j.cfg.Limit)
	if err != nil {
		return finish(fmt.Errorf("collector: snapshot: %w", err))
	}
	report.Snapshots = len(snapshots)
	logger.Infof("collector: collected %d snapshots", len(snapshots))

	top := snapshots
	if len(top) > j.cfg.TopN {
		top = top[:j.cfg.TopN]
	}
	var firstErr error
	for _, snap := range top {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		logger.Infof("collector: collecting %d days of history for %s (%s)", j.cfg.WindowDays, snap.Name, snap.ID)
		_, err := j.fetcher.FetchSeries(ctx, market.SeriesRequest{AssetID: snap.ID, WindowDays: j.cfg.WindowDays})
		if err != nil {
			report.Failed = append(report.Failed, snap.ID)
			if !j.cfg.ContinueOnError {
				return finish(fmt.Errorf("collector: history %s: %w", snap.ID, err))
			}
			logger.Errorf("collector: history %s failed, continuing: %v", snap.ID, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("collector: history %s: %w", snap.ID, err)
			}
			continue
		}
		report.Processed++
		report.Assets = append(report.Assets, snap.ID)
	}
	if firstErr != nil && report.Processed == 0 {
		return finish(firstErr)
	}
	return finish(nil)
}
