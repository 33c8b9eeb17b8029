package surfline

import (
	"context"
	"time"

	"github.com/i474232898/surfcams/internal/forecast"
)

// Tides returns today's high and low tides for the spot.
func (s *Session) Tides(ctx context.Context, spotID string) ([]forecast.TideEvent, error) {
	var payload tidesResponse
	if err := s.get(ctx, "tides", spotID, tideDays, &payload); err != nil {
		return nil, err
	}
	return todaysTides(payload, s.client.now()), nil
}

// todaysTides drops NORMAL readings and keeps the extrema whose local
// day-of-month matches now's UTC day-of-month.
//
// TODO: compare the full local date; this lets the same day-of-month from
// a neighbouring month through and misfires for calls near local midnight.
func todaysTides(payload tidesResponse, now time.Time) []forecast.TideEvent {
	unit := payload.Associated.Units.TideHeight
	today := now.UTC().Day()

	events := make([]forecast.TideEvent, 0, len(payload.Data.Tides))
	for _, t := range payload.Data.Tides {
		if forecast.TideType(t.Type) == forecast.TideNormal {
			continue
		}
		at := localTime(t.Timestamp, t.UTCOffset)
		if at.Day() != today {
			continue
		}
		events = append(events, forecast.TideEvent{
			Time: at,
			Type: forecast.TideType(t.Type),
			Height: forecast.TideHeight{
				Value: t.Height,
				Unit:  unit,
			},
		})
	}
	return events
}
