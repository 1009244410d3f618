package bookings

import (
	"context"
	"time"

	"parkwise/pkg/logger"
	"parkwise/pkg/metrics"
)

// Sweeper drives the time-based booking transitions: reserved bookings whose
// window started but were never claimed become no-shows, and active bookings
// that ran past their window are force checked out.
type Sweeper struct {
	service Service
	config  *SweeperConfig
	metrics *metrics.Metrics
	log     *logger.Logger
	done    chan struct{}
}

// SweeperConfig contains configuration for the background sweep
type SweeperConfig struct {
	Interval  time.Duration
	BatchSize int
}

// DefaultSweeperConfig returns default sweeper configuration
func DefaultSweeperConfig() *SweeperConfig {
	return &SweeperConfig{
		Interval:  1 * time.Minute, // Check for expired bookings every minute
		BatchSize: 100,             // Process 100 bookings per category per pass
	}
}

// NewSweeper creates a new booking sweeper. collector may be nil when
// metrics are disabled.
func NewSweeper(service Service, config *SweeperConfig, collector *metrics.Metrics) *Sweeper {
	if config == nil {
		config = DefaultSweeperConfig()
	}

	return &Sweeper{
		service: service,
		config:  config,
		metrics: collector,
		log:     logger.GetDefault(),
		done:    make(chan struct{}),
	}
}

// Start starts the background sweep loop
func (sw *Sweeper) Start(ctx context.Context) {
	sw.log.Info("Starting booking sweeper", "interval", sw.config.Interval.String())
	go sw.run(ctx)
}

// Stop stops the background sweep loop
func (sw *Sweeper) Stop() {
	sw.log.Info("Stopping booking sweeper")
	close(sw.done)
}

func (sw *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(sw.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sw.sweep(ctx)
		case <-sw.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sweep runs one pass over both expiry categories
func (sw *Sweeper) sweep(ctx context.Context) {
	noShows, noShowFailures := sw.service.ProcessNoShows(ctx, sw.config.BatchSize)
	checkouts, checkoutFailures := sw.service.ProcessOverdueCheckouts(ctx, sw.config.BatchSize)

	if sw.metrics != nil && noShows > 0 {
		sw.metrics.BookingsExpired(noShows)
	}

	failures := noShowFailures + checkoutFailures
	if noShows > 0 || checkouts > 0 || failures > 0 {
		sw.log.LogSweepResult(ctx, noShows, checkouts, failures)
	}
}
