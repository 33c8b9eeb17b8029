package surfline

// Upstream payload shapes. Each response is decoded into one of these and
// then checked with the validator before any transformation runs.

type tidesResponse struct {
	Data       *tidesData       `json:"data" validate:"required"`
	Associated *tidesAssociated `json:"associated" validate:"required"`
}

type tidesData struct {
	Tides []tideRecord `json:"tides" validate:"dive"`
}

type tidesAssociated struct {
	Units struct {
		TideHeight string `json:"tideHeight"`
	} `json:"units"`
}

type tideRecord struct {
	Timestamp int64   `json:"timestamp" validate:"required"`
	UTCOffset float64 `json:"utcOffset"`
	Type      string  `json:"type" validate:"oneof=HIGH LOW NORMAL"`
	Height    float64 `json:"height"`
}

type sunlightResponse struct {
	Data *sunlightData `json:"data" validate:"required"`
}

type sunlightData struct {
	Sunlight []sunlightRecord `json:"sunlight" validate:"dive"`
}

type sunlightRecord struct {
	Dawn             int64   `json:"dawn" validate:"required"`
	DawnUTCOffset    float64 `json:"dawnUTCOffset"`
	Sunrise          int64   `json:"sunrise" validate:"required"`
	SunriseUTCOffset float64 `json:"sunriseUTCOffset"`
	Sunset           int64   `json:"sunset" validate:"required"`
	SunsetUTCOffset  float64 `json:"sunsetUTCOffset"`
	Dusk             int64   `json:"dusk" validate:"required"`
	DuskUTCOffset    float64 `json:"duskUTCOffset"`
}

type windResponse struct {
	Data *windData `json:"data" validate:"required"`
}

type windData struct {
	Wind []windRecord `json:"wind" validate:"dive"`
}

type windRecord struct {
	Timestamp     int64   `json:"timestamp" validate:"required"`
	UTCOffset     float64 `json:"utcOffset"`
	Direction     float64 `json:"direction"`
	DirectionType string  `json:"directionType"`
	Speed         float64 `json:"speed" validate:"gte=0"`
	Gust          float64 `json:"gust" validate:"gte=0"`
	OptimalScore  int     `json:"optimalScore"`
}

type waveResponse struct {
	Data *waveData `json:"data" validate:"required"`
}

type waveData struct {
	Wave []waveRecord `json:"wave" validate:"dive"`
}

type waveRecord struct {
	Timestamp int64   `json:"timestamp" validate:"required"`
	UTCOffset float64 `json:"utcOffset"`
	Power     float64 `json:"power"`
	Surf      struct {
		Min           float64 `json:"min"`
		Max           float64 `json:"max"`
		HumanRelation string  `json:"humanRelation"`
		OptimalScore  int     `json:"optimalScore"`
	} `json:"surf"`
	Swells []swellRecord `json:"swells" validate:"dive"`
}

type swellRecord struct {
	Height    float64 `json:"height"`
	Period    float64 `json:"period"`
	Direction float64 `json:"direction"`
	Impact    float64 `json:"impact"`
}
