package surfline

import (
	"context"
	"strings"
	"time"

	"github.com/i474232898/surfcams/internal/forecast"
)

// Wind returns the three-day wind series downsampled to three-hourly
// daytime slots, speeds in kph and each sample colour-graded.
func (s *Session) Wind(ctx context.Context, spotID string) ([]forecast.Slot[forecast.WindSample], error) {
	var payload windResponse
	if err := s.get(ctx, "wind", spotID, seriesDays, &payload); err != nil {
		return nil, err
	}
	return windSeries(payload), nil
}

func windSeries(payload windResponse) []forecast.Slot[forecast.WindSample] {
	return downsample(payload.Data.Wind,
		func(r windRecord) time.Time { return localTime(r.Timestamp, r.UTCOffset) },
		func(r windRecord) forecast.WindSample {
			class := directionClass(r.DirectionType)
			speed := r.Speed * knotsToKph
			return forecast.WindSample{
				Direction:      r.Direction,
				DirectionClass: class,
				SpeedKph:       speed,
				GustKph:        r.Gust * knotsToKph,
				Score:          r.OptimalScore,
				Severity:       Classify(class, speed),
			}
		},
	)
}

func directionClass(s string) forecast.DirectionClass {
	for _, c := range []forecast.DirectionClass{forecast.Onshore, forecast.CrossShore, forecast.Offshore} {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return forecast.DirectionClass(s)
}

// speedBand is an upper speed bound (exclusive, kph) and its colour.
type speedBand struct {
	below    float64
	severity forecast.Severity
}

// severityBands lists, per direction class, the bands checked in order;
// the last entry of each row is the fallback above every bound.
var severityBands = map[forecast.DirectionClass][]speedBand{
	forecast.Onshore: {
		{10, forecast.SeverityGreen},
		{20, forecast.SeverityOrange},
		{30, forecast.SeverityOrange},
		{40, forecast.SeverityRed},
	},
	forecast.CrossShore: {
		{10, forecast.SeverityGreen},
		{20, forecast.SeverityGreen},
		{30, forecast.SeverityOrange},
		{40, forecast.SeverityOrange},
	},
	forecast.Offshore: {
		{10, forecast.SeverityGreen},
		{20, forecast.SeverityGreen},
		{30, forecast.SeverityOrange},
		{40, forecast.SeverityOrange},
	},
}

var severityAbove = map[forecast.DirectionClass]forecast.Severity{
	forecast.Onshore:    forecast.SeverityRed,
	forecast.CrossShore: forecast.SeverityRed,
	forecast.Offshore:   forecast.SeverityOrange,
}

// Classify grades a wind sample by its direction class and speed in kph.
// Offshore wind never goes above orange. Unknown classes are neutral.
func Classify(class forecast.DirectionClass, speedKph float64) forecast.Severity {
	bands, ok := severityBands[class]
	if !ok {
		return forecast.SeverityNeutral
	}
	for _, b := range bands {
		if speedKph < b.below {
			return b.severity
		}
	}
	return severityAbove[class]
}
