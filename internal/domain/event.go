package domain

import "time"

// AssessmentEvent is the assessment-completed notification emitted for
// downstream consumers. It carries the headline numbers only; the full
// result stays with the caller.
type AssessmentEvent struct {
	Latitude        float64              `json:"latitude"`
	Longitude       float64              `json:"longitude"`
	Crop            string               `json:"crop,omitempty"`
	PestRisks       map[string]RiskLevel `json:"pest_risks"`
	WaterStress     RiskLevel            `json:"water_stress"`
	ExcessMoisture  bool                 `json:"excess_moisture"`
	CarbonTrend     CarbonTrend          `json:"carbon_trend"`
	TotalCarbonKg   float64              `json:"total_carbon_kg"`
	Recommendations int                  `json:"recommendations"`
	Source          string               `json:"source"`
	AssessedAt      time.Time            `json:"assessed_at"`
}
