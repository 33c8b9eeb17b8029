package surfline

import (
	"context"
	"slices"
	"time"

	"github.com/i474232898/surfcams/internal/forecast"
)

// Waves returns the three-day surf series downsampled like Wind, each
// sample carrying its highest-impact swell.
func (s *Session) Waves(ctx context.Context, spotID string) ([]forecast.Slot[forecast.WaveSample], error) {
	var payload waveResponse
	if err := s.get(ctx, "wave", spotID, seriesDays, &payload); err != nil {
		return nil, err
	}
	return waveSeries(payload), nil
}

func waveSeries(payload waveResponse) []forecast.Slot[forecast.WaveSample] {
	return downsample(payload.Data.Wave,
		func(r waveRecord) time.Time { return localTime(r.Timestamp, r.UTCOffset) },
		func(r waveRecord) forecast.WaveSample {
			return forecast.WaveSample{
				Min:          r.Surf.Min,
				Max:          r.Surf.Max,
				Human:        r.Surf.HumanRelation,
				Score:        r.Surf.OptimalScore,
				PrimarySwell: primarySwell(r.Swells),
				Power:        r.Power,
			}
		},
	)
}

// primarySwell picks the swell with the highest impact; ties go to the one
// listed first. A sample without swells gets a zero swell.
func primarySwell(swells []swellRecord) forecast.Swell {
	if len(swells) == 0 {
		return forecast.Swell{}
	}
	sorted := slices.Clone(swells)
	slices.SortStableFunc(sorted, func(a, b swellRecord) int {
		switch {
		case a.Impact > b.Impact:
			return -1
		case a.Impact < b.Impact:
			return 1
		default:
			return 0
		}
	})
	top := sorted[0]
	return forecast.Swell{
		Height:    top.Height,
		Period:    top.Period,
		Direction: top.Direction,
	}
}
