package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/logx"

	"coinlens-api/internal/cli"
	"coinlens-api/internal/collector"
	"coinlens-api/internal/config"
	"coinlens-api/internal/svc"
	"coinlens-api/pkg/journal"
	"coinlens-api/pkg/poller"
)

var (
	errRunFailed = errors.New("collection failed")
	errNoStore   = errors.New("no durable store configured (set Store.DSN, or pass --ephemeral to discard results)")
)

type options struct {
	configFile string
	journalDir string
	ephemeral  bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "collector",
		Short: "Batch collection of market snapshots and history",
		Long: `collector fetches the top assets by market cap and the recent history of
the highest ranked few, writing every successful read to the persistent cache.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "f", "etc/coinlens.yaml", "the config file")
	rootCmd.PersistentFlags().StringVar(&opts.journalDir, "journal", "", "write one JSON record per run into this directory")
	rootCmd.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "collect into memory when no store is configured; results are discarded on exit")

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newScheduleCmd(opts))
	return rootCmd
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one collection and print its report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, err := loadJob(opts.configFile, opts.ephemeral)
			if err != nil {
				return err
			}
			runs, err := openJournal(opts.journalDir)
			if err != nil {
				return err
			}
			report := job.Run(cmd.Context())
			record(runs, report)
			if err := writeReport(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Success {
				return fmt.Errorf("%w: %s", errRunFailed, report.Error)
			}
			return nil
		},
	}
}

func newScheduleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run collections on the configured interval until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, err := loadJob(opts.configFile, opts.ephemeral)
			if err != nil {
				return err
			}
			runs, err := openJournal(opts.journalDir)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			interval := job.Config().IntervalDuration
			p := poller.New("collector", interval, func(ctx context.Context) error {
				report := job.Run(ctx)
				record(runs, report)
				return report.Err
			})
			if err := p.Start(ctx); err != nil {
				return err
			}
			defer p.Stop()
			logx.Infof("collector: scheduled every %s", interval)

			<-ctx.Done()
			logx.Infof("collector: shutting down after %d runs", p.Runs())
			return nil
		},
	}
}

func loadJob(configFile string, ephemeral bool) (*collector.Job, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if !cfg.HasStore() {
		if !ephemeral {
			return nil, errNoStore
		}
		logx.Errorf("collector: no Store.DSN configured, collected data is kept in memory and discarded on exit")
	}
	// The collector owns its schedule; the API refresher is not needed here.
	cfg.Poll.Disabled = true
	cli.LogConfigSummary(cfg)

	svcCtx, err := svc.NewServiceContext(*cfg)
	if err != nil {
		return nil, err
	}
	return svcCtx.Collector, nil
}

func writeReport(w io.Writer, report collector.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func openJournal(dir string) (*journal.Writer, error) {
	if dir == "" {
		return nil, nil
	}
	return journal.NewWriter(dir)
}

// record journals a run. Journal failures are logged and never fail the run.
func record(w *journal.Writer, report collector.Report) {
	if w == nil {
		return
	}
	path, err := w.Write(&journal.Record{
		Timestamp: report.FinishedAt,
		Job:       "collector",
		Success:   report.Success,
		Error:     report.Error,
		Report:    report,
	})
	if err != nil {
		logx.Errorf("collector: journal run: %v", err)
		return
	}
	logx.Infof("collector: journaled run to %s", path)
}
