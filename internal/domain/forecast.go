package domain

import (
	"math"
	"time"
)

// Open-Meteo daily field names. Callers request exactly the fields their
// rules need; fields absent from the response stay nil on each ForecastDay.
const (
	FieldTempMax            = "temperature_2m_max"
	FieldTempMin            = "temperature_2m_min"
	FieldPrecipitation      = "precipitation_sum"
	FieldHumidityMean       = "relative_humidity_2m_mean"
	FieldEvapotranspiration = "et0_fao_evapotranspiration"
)

// AllForecastFields covers every daily field the assessment rules consume.
var AllForecastFields = []string{
	FieldTempMax,
	FieldTempMin,
	FieldPrecipitation,
	FieldHumidityMean,
	FieldEvapotranspiration,
}

// ForecastDay holds one day of forecast values. Every field except the date
// is optional: a nil pointer means the provider did not supply that field,
// and any rule keyed on it is skipped rather than evaluated against zero.
type ForecastDay struct {
	Date                 time.Time `json:"date"`
	TempMaxC             *float64  `json:"temp_max_c,omitempty"`
	TempMinC             *float64  `json:"temp_min_c,omitempty"`
	PrecipitationMm      *float64  `json:"precipitation_mm,omitempty"`
	HumidityPct          *float64  `json:"humidity_pct,omitempty"`
	EvapotranspirationMm *float64  `json:"evapotranspiration_mm,omitempty"`
}

// Forecast is an ordered multi-day weather outlook, oldest day first.
// Forecasts are produced fresh per request and never cached by this engine.
type Forecast struct {
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Days      []ForecastDay `json:"days"`
}

// MaxTemp returns the highest daily maximum temperature across the window.
// The second return is false when no day carries the field.
func (f Forecast) MaxTemp() (float64, bool) {
	return foldDays(f.Days, tempMax, maxf, negInf)
}

// MinTemp returns the lowest daily minimum temperature across the window.
func (f Forecast) MinTemp() (float64, bool) {
	return foldDays(f.Days, tempMin, minf, posInf)
}

// MeanMaxTemp returns the mean of the daily maximum temperatures.
func (f Forecast) MeanMaxTemp() (float64, bool) {
	return meanDays(f.Days, tempMax)
}

// TotalPrecipitation sums daily precipitation over the window.
func (f Forecast) TotalPrecipitation() (float64, bool) {
	return foldDays(f.Days, precip, add, 0)
}

// MaxDailyPrecipitation returns the wettest single day in the window.
func (f Forecast) MaxDailyPrecipitation() (float64, bool) {
	return foldDays(f.Days, precip, maxf, negInf)
}

// MeanHumidity returns the mean daily relative humidity.
func (f Forecast) MeanHumidity() (float64, bool) {
	return meanDays(f.Days, humidity)
}

// TotalEvapotranspiration sums daily reference evapotranspiration (ET0).
func (f Forecast) TotalEvapotranspiration() (float64, bool) {
	return foldDays(f.Days, et0, add, 0)
}

// AllMaxTempsBetween reports whether every day that carries a max temperature
// falls inside [lo, hi]. False when the field is absent everywhere.
func (f Forecast) AllMaxTempsBetween(lo, hi float64) bool {
	seen := false
	for _, d := range f.Days {
		if d.TempMaxC == nil {
			continue
		}
		seen = true
		if *d.TempMaxC < lo || *d.TempMaxC > hi {
			return false
		}
	}
	return seen
}

const (
	negInf = -1.0e308
	posInf = 1.0e308
)

func tempMax(d ForecastDay) *float64  { return d.TempMaxC }
func tempMin(d ForecastDay) *float64  { return d.TempMinC }
func precip(d ForecastDay) *float64   { return d.PrecipitationMm }
func humidity(d ForecastDay) *float64 { return d.HumidityPct }
func et0(d ForecastDay) *float64      { return d.EvapotranspirationMm }

func add(a, b float64) float64  { return a + b }
func maxf(a, b float64) float64 { return math.Max(a, b) }
func minf(a, b float64) float64 { return math.Min(a, b) }

func foldDays(days []ForecastDay, field func(ForecastDay) *float64, combine func(a, b float64) float64, seed float64) (float64, bool) {
	acc := seed
	seen := false
	for _, d := range days {
		v := field(d)
		if v == nil {
			continue
		}
		acc = combine(acc, *v)
		seen = true
	}
	if !seen {
		return 0, false
	}
	return acc, true
}

func meanDays(days []ForecastDay, field func(ForecastDay) *float64) (float64, bool) {
	sum := 0.0
	n := 0
	for _, d := range days {
		if v := field(d); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
