package surfline

import (
	"math"
	"time"

	"github.com/i474232898/surfcams/internal/forecast"
)

// knotsToKph converts knots to kilometres per hour.
const knotsToKph = 1.852

// localTime resolves an upstream epoch timestamp and its UTC offset (in
// hours, possibly fractional) to the instant in the spot's local zone.
func localTime(epoch int64, utcOffsetHours float64) time.Time {
	offset := int(math.Round(utcOffsetHours * 3600))
	return time.Unix(epoch, 0).In(time.FixedZone("", offset))
}

// keepHour reports whether a sample at local hour h survives downsampling:
// every third hour from 06:00 to 21:00.
func keepHour(h int) bool {
	return h%3 == 0 && h >= 4
}

// downsample walks an hourly series in upstream order, keeps the samples
// that pass keepHour and inserts a break slot whenever the retained hour
// goes backwards. The cursor starts at 24 so the series always opens with
// a break.
func downsample[R any, T any](records []R, at func(R) time.Time, convert func(R) T) []forecast.Slot[T] {
	out := make([]forecast.Slot[T], 0, len(records)/3+4)
	prevHour := 24
	for _, r := range records {
		t := at(r)
		h := t.Hour()
		if !keepHour(h) {
			continue
		}
		if h < prevHour {
			out = append(out, forecast.Slot[T]{Time: t, Break: true})
		}
		prevHour = h

		sample := convert(r)
		out = append(out, forecast.Slot[T]{Time: t, Data: &sample})
	}
	return out
}
