// Package display renders the backend to a terminal: the world time once
// at startup, then a random text and the elapsed time on their own timers.
package display

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pkg.jsn.cam/gentexts/internal/worldtime"
)

// ErrorTitle is shown when the world time lookup fails
const ErrorTitle = "gentexts (time API error)"

// Source is what the presenter displays
type Source interface {
	RandomText(ctx context.Context) (string, error)
	WorldTime(ctx context.Context) (worldtime.Snapshot, error)
	Elapsed() time.Duration
}

// Config sets the refresh intervals
type Config struct {
	TextInterval    time.Duration
	ElapsedInterval time.Duration
}

// Presenter writes lines to out. Writes from its timers are serialized.
type Presenter struct {
	src    Source
	cfg    Config
	logger *zap.Logger

	mu  sync.Mutex
	out io.Writer
}

// New creates a presenter
func New(src Source, out io.Writer, cfg Config, logger *zap.Logger) *Presenter {
	if cfg.TextInterval <= 0 {
		cfg.TextInterval = 10 * time.Second
	}
	if cfg.ElapsedInterval <= 0 {
		cfg.ElapsedInterval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Presenter{
		src:    src,
		cfg:    cfg,
		logger: logger.Named("display"),
		out:    out,
	}
}

// Run shows the world time, then refreshes the text and elapsed time until
// ctx is done. Cancellation or an expired deadline is not an error.
func (p *Presenter) Run(ctx context.Context) error {
	p.showWorldTime(ctx)

	parent := ctx
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.textLoop(ctx) })
	g.Go(func() error { return p.elapsedLoop(ctx) })

	err := g.Wait()
	if parent.Err() != nil {
		// stopped by the caller, whether cancelled or past its deadline
		return nil
	}
	return err
}

func (p *Presenter) showWorldTime(ctx context.Context) {
	snap, err := p.src.WorldTime(ctx)
	if err != nil {
		p.logger.Warn("world time unavailable", zap.Error(err))
		p.println("== " + ErrorTitle + " ==")
		p.println("World time: request failed")
		return
	}

	p.println("== " + snap.Title() + " ==")
	if len(snap.Raw) > 0 {
		p.println("World time: " + string(snap.Raw))
	}
}

func (p *Presenter) textLoop(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.TextInterval)
	defer ticker.Stop()

	for {
		p.showText(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// showText skips the cycle when no text could be produced
func (p *Presenter) showText(ctx context.Context) {
	text, err := p.src.RandomText(ctx)
	if err != nil {
		p.logger.Warn("no text this cycle", zap.Error(err))
		return
	}
	p.println("Text: " + text)
}

func (p *Presenter) elapsedLoop(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.ElapsedInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.println(fmt.Sprintf("Elapsed: %ds", int(p.src.Elapsed().Seconds())))
		}
	}
}

func (p *Presenter) println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := fmt.Fprintln(p.out, line); err != nil {
		p.logger.Debug("write failed", zap.Error(err))
	}
}
