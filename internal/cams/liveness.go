package cams

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// SweeperConfig configures a Sweeper.
type SweeperConfig struct {
	Client    *http.Client
	Referer   string // sent for proxied cams
	BatchSize int
	Timeout   time.Duration // per stream check
	Now       func() time.Time
	Logger    *slog.Logger
}

// Sweeper checks whether cam streams answer and records when they went
// offline.
type Sweeper struct {
	repo      Repository
	client    *http.Client
	referer   string
	batchSize int
	timeout   time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewSweeper creates a Sweeper, filling unset options with defaults.
func NewSweeper(repo Repository, cfg SweeperConfig) *Sweeper {
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Sweeper{
		repo:      repo,
		client:    cfg.Client,
		referer:   cfg.Referer,
		batchSize: cfg.BatchSize,
		timeout:   cfg.Timeout,
		now:       cfg.Now,
		logger:    cfg.Logger,
	}
}

// Sweep checks every cam, at most batchSize at a time, and saves the results in one
// update. A cam that answers is marked online; one that fails keeps its
// existing OfflineSince or gets the current time.
func (s *Sweeper) Sweep(ctx context.Context) error {
	list, err := s.repo.ListCams(ctx)
	if err != nil {
		return fmt.Errorf("listing cams: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(s.batchSize)
	for i := range list {
		if ctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			s.update(ctx, &list[i])
			return nil
		})
	}
	_ = g.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	offline := 0
	for _, c := range list {
		if !c.Online() {
			offline++
		}
	}

	if err := s.repo.UpdateOfflineSince(ctx, list); err != nil {
		return fmt.Errorf("saving cam status: %w", err)
	}
	s.logger.Info("cam liveness sweep done", "cams", len(list), "offline", offline)
	return nil
}

func (s *Sweeper) update(ctx context.Context, cam *Cam) {
	if err := s.check(ctx, *cam); err != nil {
		s.logger.Debug("cam unreachable", "cam", cam.Slug, "error", err)
		if cam.OfflineSince == nil {
			now := s.now().UTC()
			cam.OfflineSince = &now
		}
		return
	}
	cam.OfflineSince = nil
}

func (s *Sweeper) check(ctx context.Context, cam Cam) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cam.URL, nil)
	if err != nil {
		return err
	}
	if cam.Proxy && s.referer != "" {
		req.Header.Set("Referer", s.referer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
