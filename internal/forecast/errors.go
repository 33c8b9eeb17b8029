package forecast

import "fmt"

// Pipeline names used in FetchError and logs.
const (
	PipelineTides    = "tides"
	PipelineSunlight = "sunlight"
	PipelineWind     = "wind"
	PipelineWaves    = "waves"
)

// FetchError reports that a spot's forecast could not be assembled. No
// partial data accompanies it.
type FetchError struct {
	SpotID   string
	Pipeline string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("forecast for spot %s unavailable: %s: %v", e.SpotID, e.Pipeline, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
