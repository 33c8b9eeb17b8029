package surfline

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// pacific is UTC-8, the offset used by most fixtures.
var pacific = time.FixedZone("", -8*3600)

// fixedNow is the evaluation instant for tide filtering.
var fixedNow = time.Date(2025, 11, 27, 12, 0, 0, 0, time.UTC)

func epochAt(loc *time.Location, day, hour int) int64 {
	return time.Date(2025, 11, day, hour, 0, 0, 0, loc).Unix()
}

// upstream is a fake Surfline API. Handlers are keyed by endpoint name;
// every request is counted.
type upstream struct {
	mu       sync.Mutex
	hits     map[string]int
	queries  map[string]string
	handlers map[string]http.HandlerFunc
	server   *httptest.Server
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{
		hits:     make(map[string]int),
		queries:  make(map[string]string),
		handlers: make(map[string]http.HandlerFunc),
	}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		u.mu.Lock()
		u.hits[name]++
		u.queries[name] = r.URL.RawQuery
		h := u.handlers[name]
		u.mu.Unlock()
		if h == nil {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstream) handle(name string, h http.HandlerFunc) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.handlers[name] = h
}

func (u *upstream) json(name string, payload any) {
	u.handle(name, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	})
}

func (u *upstream) status(name string, code int) {
	u.handle(name, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	})
}

func (u *upstream) count(name string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[name]
}

func (u *upstream) query(name string) string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.queries[name]
}

func (u *upstream) total() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for _, c := range u.hits {
		n += c
	}
	return n
}

func (u *upstream) client() *Client {
	return NewClient(Options{
		BaseURL: u.server.URL,
		Timeout: 2 * time.Second,
		Retry: RetryPolicy{
			MaxAttempts: 3,
			Backoff: BackoffConfig{
				InitialInterval: time.Millisecond,
				MaxInterval:     5 * time.Millisecond,
			},
			Retryable: IsTransient,
		},
		Now: func() time.Time { return fixedNow },
	})
}

// servePayloads installs a happy-path response for all four endpoints.
func (u *upstream) servePayloads() {
	u.json("tides", tidesPayload())
	u.json("sunlight", sunlightPayload())
	u.json("wind", windPayload(48))
	u.json("wave", wavePayload(48))
}

func tidesPayload() map[string]any {
	return map[string]any{
		"data": map[string]any{
			"tides": []map[string]any{
				{"timestamp": epochAt(time.UTC, 27, 3), "utcOffset": 0, "type": "HIGH", "height": 1.8},
				{"timestamp": epochAt(time.UTC, 27, 5), "utcOffset": 0, "type": "NORMAL", "height": 1.2},
			},
		},
		"associated": map[string]any{
			"units": map[string]any{"tideHeight": "m"},
		},
	}
}

func sunlightPayload() map[string]any {
	return map[string]any{
		"data": map[string]any{
			"sunlight": []map[string]any{
				{
					"dawn": epochAt(pacific, 27, 6), "dawnUTCOffset": -8,
					"sunrise": epochAt(pacific, 27, 7), "sunriseUTCOffset": -8,
					"sunset": epochAt(pacific, 27, 17), "sunsetUTCOffset": -8,
					"dusk": epochAt(pacific, 27, 18), "duskUTCOffset": -8,
				},
			},
		},
	}
}

// windPayload returns n hourly wind records starting at local midnight on
// the 27th, 10 knots each.
func windPayload(n int) map[string]any {
	records := make([]map[string]any, 0, n)
	start := time.Date(2025, 11, 27, 0, 0, 0, 0, pacific)
	for i := 0; i < n; i++ {
		records = append(records, map[string]any{
			"timestamp":     start.Add(time.Duration(i) * time.Hour).Unix(),
			"utcOffset":     -8,
			"direction":     270.5,
			"directionType": "Offshore",
			"speed":         10,
			"gust":          20,
			"optimalScore":  2,
		})
	}
	return map[string]any{"data": map[string]any{"wind": records}}
}

func wavePayload(n int) map[string]any {
	records := make([]map[string]any, 0, n)
	start := time.Date(2025, 11, 27, 0, 0, 0, 0, pacific)
	for i := 0; i < n; i++ {
		records = append(records, map[string]any{
			"timestamp": start.Add(time.Duration(i) * time.Hour).Unix(),
			"utcOffset": -8,
			"power":     120.5,
			"surf": map[string]any{
				"min": 1, "max": 2, "humanRelation": "Knee to thigh", "optimalScore": 1,
			},
			"swells": []map[string]any{
				{"height": 0.5, "period": 8, "direction": 200, "impact": 3},
				{"height": 1.4, "period": 14, "direction": 285, "impact": 7},
				{"height": 0.3, "period": 5, "direction": 90, "impact": 2},
			},
		})
	}
	return map[string]any{"data": map[string]any{"wave": records}}
}
