package forecast

import (
	"strconv"
	"time"
)

// TideType is the upstream extremum kind of a tide reading.
type TideType string

const (
	TideHigh   TideType = "HIGH"
	TideLow    TideType = "LOW"
	TideNormal TideType = "NORMAL"
)

// TideHeight is a tide height with the unit label reported by upstream.
type TideHeight struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// String renders the height the way it is displayed, e.g. "1.2m".
func (h TideHeight) String() string {
	return strconv.FormatFloat(h.Value, 'f', -1, 64) + h.Unit
}

// TideEvent is a single high or low tide for today.
type TideEvent struct {
	Time   time.Time  `json:"date"`
	Type   TideType   `json:"type"`
	Height TideHeight `json:"height"`
}

// SunlightKind identifies one of the four daily light events.
type SunlightKind string

const (
	FirstLight SunlightKind = "first-light"
	Sunrise    SunlightKind = "sunrise"
	Sunset     SunlightKind = "sunset"
	LastLight  SunlightKind = "last-light"
)

// Label returns the display label for the light event.
func (k SunlightKind) Label() string {
	switch k {
	case FirstLight:
		return "🌘 First Light"
	case Sunrise:
		return "🌖 Sunrise"
	case Sunset:
		return "🌔 Sunset"
	case LastLight:
		return "🌒 Last Light"
	default:
		return string(k)
	}
}

// SunlightEvent is one light event of the day.
type SunlightEvent struct {
	Time  time.Time    `json:"date"`
	Kind  SunlightKind `json:"type"`
	Label string       `json:"label"`
}

// DirectionClass is the wind direction relative to the shoreline.
type DirectionClass string

const (
	Onshore    DirectionClass = "Onshore"
	CrossShore DirectionClass = "Cross-shore"
	Offshore   DirectionClass = "Offshore"
)

// Severity is the display colour of a wind sample.
type Severity string

const (
	SeverityGreen   Severity = "green"
	SeverityOrange  Severity = "orange"
	SeverityRed     Severity = "red"
	SeverityNeutral Severity = "gray"
)

// WindSample is a downsampled wind reading. Speeds are in kph.
type WindSample struct {
	Direction      float64        `json:"direction"`
	DirectionClass DirectionClass `json:"directionType"`
	SpeedKph       float64        `json:"speed"`
	GustKph        float64        `json:"gust"`
	Score          int            `json:"score"`
	Severity       Severity       `json:"severity"`
}

// Swell is a single swell component.
type Swell struct {
	Height    float64 `json:"height"`
	Period    float64 `json:"period"`
	Direction float64 `json:"direction"`
}

// WaveSample is a downsampled surf reading with its dominant swell.
type WaveSample struct {
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Human        string  `json:"human"`
	Score        int     `json:"score"`
	PrimarySwell Swell   `json:"primarySwell"`
	Power        float64 `json:"power"`
}

// Slot is one row of a downsampled series. A slot is either a day break
// (Break set, Data nil) or a sample.
type Slot[T any] struct {
	Time  time.Time `json:"date"`
	Break bool      `json:"break,omitempty"`
	Data  *T        `json:"data,omitempty"`
}

// Bundle is the full forecast for a spot.
type Bundle struct {
	SpotID   string             `json:"spotId"`
	Tides    []TideEvent        `json:"tides"`
	Sunlight []SunlightEvent    `json:"sunlight"`
	Wind     []Slot[WindSample] `json:"wind"`
	Waves    []Slot[WaveSample] `json:"waves"`
}

// EmptyBundle returns a bundle with all sequences empty.
func EmptyBundle(spotID string) Bundle {
	return Bundle{
		SpotID:   spotID,
		Tides:    []TideEvent{},
		Sunlight: []SunlightEvent{},
		Wind:     []Slot[WindSample]{},
		Waves:    []Slot[WaveSample]{},
	}
}

// IsEmpty reports whether the bundle carries no data at all.
func (b Bundle) IsEmpty() bool {
	return len(b.Tides) == 0 && len(b.Sunlight) == 0 && len(b.Wind) == 0 && len(b.Waves) == 0
}

// Condition pairs the wind and wave slots at the same position.
type Condition struct {
	Wind Slot[WindSample] `json:"wind"`
	Wave Slot[WaveSample] `json:"wave"`
}

// Conditions zips wind and waves, truncated to the shorter series.
func (b Bundle) Conditions() []Condition {
	n := min(len(b.Wind), len(b.Waves))
	out := make([]Condition, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Condition{Wind: b.Wind[i], Wave: b.Waves[i]})
	}
	return out
}
