package forecast

import (
	"context"
)

// Session is one upstream connection scope. Its four fetches run
// concurrently and must be safe for concurrent use; Close releases the
// pooled connections once the aggregation is done.
type Session interface {
	Tides(ctx context.Context, spotID string) ([]TideEvent, error)
	Sunlight(ctx context.Context, spotID string) ([]SunlightEvent, error)
	Wind(ctx context.Context, spotID string) ([]Slot[WindSample], error)
	Waves(ctx context.Context, spotID string) ([]Slot[WaveSample], error)
	Close() error
}

// Provider abstracts a forecast data source (e.g. Surfline).
type Provider interface {
	Name() string
	NewSession() Session
}
