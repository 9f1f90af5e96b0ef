// Package poller runs a task on a fixed interval for the lifetime of its owner.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/zeromicro/go-zero/core/logx"
)

// DefaultInterval is the refresh cadence used when none is configured.
const DefaultInterval = 60 * time.Second

// ErrRunning is returned by Start when the poller is already started.
var ErrRunning = errors.New("poller: already running")

// Task is one unit of periodic work. It should honour ctx cancellation.
type Task func(ctx context.Context) error

// Poller schedules a Task every interval. Runs never overlap; a run still in
// progress when the next tick fires causes that tick to be skipped.
type Poller struct {
	name     string
	interval time.Duration
	task     Task

	mu        sync.Mutex
	scheduler *gocron.Scheduler
	cancel    context.CancelFunc
	runs      int
}

// New builds a stopped poller. A non-positive interval uses DefaultInterval.
func New(name string, interval time.Duration, task Task) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{name: name, interval: interval, task: task}
}

// Interval returns the configured cadence.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start runs the task immediately and then every interval until Stop is called
// or ctx is cancelled.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scheduler != nil {
		return ErrRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()
	if _, err := scheduler.Every(p.interval).Do(p.run, runCtx); err != nil {
		cancel()
		return err
	}
	scheduler.StartAsync()
	p.scheduler, p.cancel = scheduler, cancel
	logx.Infof("poller %s: started interval=%s", p.name, p.interval)

	go func() {
		<-runCtx.Done()
		p.Stop()
	}()
	return nil
}

// Stop cancels in-flight work and halts the schedule. It is safe to call more
// than once and on a poller that never started.
func (p *Poller) Stop() {
	p.mu.Lock()
	scheduler, cancel := p.scheduler, p.cancel
	p.scheduler, p.cancel = nil, nil
	p.mu.Unlock()
	if scheduler == nil {
		return
	}
	cancel()
	scheduler.Stop()
	logx.Infof("poller %s: stopped", p.name)
}

// Running reports whether the schedule is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scheduler != nil
}

// Runs returns how many times the task has been invoked.
func (p *Poller) Runs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs
}

func (p *Poller) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	p.mu.Lock()
	p.runs++
	p.mu.Unlock()
	if err := p.task(ctx); err != nil && ctx.Err() == nil {
		logx.WithContext(ctx).Errorf("poller %s: run failed: %v", p.name, err)
	}
}
