package surfline

import (
	"context"

	"github.com/i474232898/surfcams/internal/forecast"
)

// Sunlight returns first light, sunrise, sunset and last light for the
// first day upstream reports.
func (s *Session) Sunlight(ctx context.Context, spotID string) ([]forecast.SunlightEvent, error) {
	var payload sunlightResponse
	if err := s.get(ctx, "sunlight", spotID, sunlightDays, &payload); err != nil {
		return nil, err
	}
	return firstDaySunlight(payload), nil
}

func firstDaySunlight(payload sunlightResponse) []forecast.SunlightEvent {
	if len(payload.Data.Sunlight) == 0 {
		return []forecast.SunlightEvent{}
	}
	day := payload.Data.Sunlight[0]

	events := []struct {
		kind   forecast.SunlightKind
		epoch  int64
		offset float64
	}{
		{forecast.FirstLight, day.Dawn, day.DawnUTCOffset},
		{forecast.Sunrise, day.Sunrise, day.SunriseUTCOffset},
		{forecast.Sunset, day.Sunset, day.SunsetUTCOffset},
		{forecast.LastLight, day.Dusk, day.DuskUTCOffset},
	}

	out := make([]forecast.SunlightEvent, 0, len(events))
	for _, e := range events {
		out = append(out, forecast.SunlightEvent{
			Time:  localTime(e.epoch, e.offset),
			Kind:  e.kind,
			Label: e.kind.Label(),
		})
	}
	return out
}
