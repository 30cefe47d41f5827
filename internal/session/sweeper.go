package session

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultIdleTTL       = 2 * time.Hour
	defaultSweepInterval = 5 * time.Minute
	defaultSweepBatch    = 500
)

// IdleExpirer удаляет неактивные сессии порциями.
type IdleExpirer interface {
	ExpireIdle(before time.Time, limit int) (int, error)
}

var _ IdleExpirer = (*Registry)(nil)

// SweepOptions задает параметры воркера очистки сессий.
type SweepOptions struct {
	Logger    *log.Entry
	IdleTTL   time.Duration
	Interval  time.Duration
	BatchSize int
	Now       func() time.Time
}

// SweepOption настраивает Sweeper.
type SweepOption func(*SweepOptions)

// WithLogger задает logger для воркера.
func WithLogger(logger *log.Entry) SweepOption {
	return func(opts *SweepOptions) {
		opts.Logger = logger
	}
}

// WithIdleTTL задает время неактивности, после которого сессия удаляется.
func WithIdleTTL(ttl time.Duration) SweepOption {
	return func(opts *SweepOptions) {
		opts.IdleTTL = ttl
	}
}

// WithInterval задает интервал между проходами.
func WithInterval(interval time.Duration) SweepOption {
	return func(opts *SweepOptions) {
		opts.Interval = interval
	}
}

// WithBatchSize задает размер порции удаления.
func WithBatchSize(batchSize int) SweepOption {
	return func(opts *SweepOptions) {
		opts.BatchSize = batchSize
	}
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) SweepOption {
	return func(opts *SweepOptions) {
		opts.Now = now
	}
}

// Sweeper периодически закрывает брошенные вкладки.
type Sweeper struct {
	expirer   IdleExpirer
	logger    *log.Entry
	idleTTL   time.Duration
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

// NewSweeper создает воркер очистки сессий.
func NewSweeper(expirer IdleExpirer, options ...SweepOption) *Sweeper {
	opts := SweepOptions{
		IdleTTL:   defaultIdleTTL,
		Interval:  defaultSweepInterval,
		BatchSize: defaultSweepBatch,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "session-sweeper")
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = defaultIdleTTL
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultSweepInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultSweepBatch
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Sweeper{
		expirer:   expirer,
		logger:    logger,
		idleTTL:   opts.IdleTTL,
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
		now:       opts.Now,
	}
}

// Run запускает периодическую очистку до отмены ctx.
func (w *Sweeper) Run(ctx context.Context) {
	if w.expirer == nil {
		w.logger.Warn("session sweeper is disabled: expirer is nil")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Sweeper) sweep(ctx context.Context) {
	expired, err := w.Sweep(ctx, w.now().Add(-w.idleTTL))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.logger.WithError(err).Warn("session sweep failed")
		return
	}
	if expired > 0 {
		w.logger.WithField("expired", expired).Info("idle sessions closed")
	}
}

// Sweep закрывает все сессии без активности после before порциями batchSize.
func (w *Sweeper) Sweep(ctx context.Context, before time.Time) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		expired, err := w.expirer.ExpireIdle(before, w.batchSize)
		if err != nil {
			return total, err
		}
		total += expired

		if expired < w.batchSize {
			return total, nil
		}
	}
}
