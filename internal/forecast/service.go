package forecast

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Service assembles forecast bundles from a single provider.
type Service struct {
	provider Provider
	logger   *slog.Logger
}

// NewService creates a new Service.
func NewService(provider Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider: provider,
		logger:   logger,
	}
}

// Aggregate fetches tides, sunlight, wind and waves for spotID concurrently
// over one provider session and returns them together. An empty spotID is
// not an error: it yields an empty bundle without touching the network.
//
// If any fetch fails the others are cancelled and a *FetchError is
// returned; partial results are dropped.
func (s *Service) Aggregate(ctx context.Context, spotID string) (Bundle, error) {
	spotID = strings.TrimSpace(spotID)
	if spotID == "" {
		return EmptyBundle(""), nil
	}

	runID := uuid.NewString()
	log := s.logger.With("run", runID, "provider", s.provider.Name(), "spot", spotID)
	start := time.Now()

	session := s.provider.NewSession()
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("closing provider session", "error", err)
		}
	}()

	var (
		tides    []TideEvent
		sunlight []SunlightEvent
		wind     []Slot[WindSample]
		waves    []Slot[WaveSample]
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		tides, err = session.Tides(gctx, spotID)
		return wrapFetch(spotID, PipelineTides, err)
	})
	g.Go(func() (err error) {
		sunlight, err = session.Sunlight(gctx, spotID)
		return wrapFetch(spotID, PipelineSunlight, err)
	})
	g.Go(func() (err error) {
		wind, err = session.Wind(gctx, spotID)
		return wrapFetch(spotID, PipelineWind, err)
	})
	g.Go(func() (err error) {
		waves, err = session.Waves(gctx, spotID)
		return wrapFetch(spotID, PipelineWaves, err)
	})

	if err := g.Wait(); err != nil {
		log.Error("forecast aggregation failed", "error", err, "elapsed", time.Since(start))
		return Bundle{}, err
	}

	bundle := EmptyBundle(spotID)
	bundle.Tides = append(bundle.Tides, tides...)
	bundle.Sunlight = append(bundle.Sunlight, sunlight...)
	bundle.Wind = append(bundle.Wind, wind...)
	bundle.Waves = append(bundle.Waves, waves...)

	log.Debug("forecast aggregated",
		"tides", len(bundle.Tides),
		"sunlight", len(bundle.Sunlight),
		"wind", len(bundle.Wind),
		"waves", len(bundle.Waves),
		"elapsed", time.Since(start),
	)
	return bundle, nil
}

func wrapFetch(spotID, pipeline string, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{SpotID: spotID, Pipeline: pipeline, Err: err}
}
