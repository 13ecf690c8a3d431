// Package domain models farm activity logs, weather forecasts, and the
// agronomic assessment rules that turn them into carbon ledgers and
// climate-risk evidence.
//
// # Data Sources
//
// Activity records arrive from the caller's persistence layer, already
// authorized and filtered to one farm. This engine never mutates or stores
// them. Forecasts come from the Open-Meteo daily API via an adapter
// implementing [ForecastFetcher]; each request re-fetches, nothing is cached.
//
// # Carbon Model
//
// Every activity category carries a flat CO2-equivalent baseline in
// kilograms:
//
//	Planting 1.5 | Irrigation 2.2 | Fertilizing 10.0
//	PestControl 3.0 | Harvesting 1.8 | Other 0.5
//
// An unrecognized category falls back to the Other factor. Records may carry
// a precomputed footprint stored at creation time for audit; the aggregator
// prefers it and recomputes otherwise. A farm's [CarbonSummary] total is
// always the sum of its per-category sums, never computed independently, so
// the ledger invariant holds by construction.
//
// # Assessment Rules
//
// Three independent, pure rule sets run per request:
//
//	AssessPestDisease: declarative table of named pest/disease rules keyed
//	  on temperature, precipitation, and humidity aggregates, optionally
//	  gated by crop.
//	AssessWaterStress: rainfall versus ET0 crop demand when available,
//	  fixed rainfall thresholds otherwise, plus a non-exclusive
//	  excess-moisture flag for single-day downpours.
//	AssessCarbonTrend: share of high-footprint activities in the recent
//	  window versus the window before it.
//
// All numeric thresholds are inclusive on the side stated in the rule. A rule
// whose required forecast field is absent is skipped, never escalated: the
// provider returns whichever daily arrays were requested, and partial data
// degrades the assessment rather than failing it.
//
// # Evidence
//
// [CollectFacts] merges the rule outputs with recent-activity heuristics and
// weather extremes into a deduplicated, priority-ranked evidence set. Facts
// are the unit handed to the narrative collaborator; each also carries its
// own deterministic fallback text, so recommendations survive a collaborator
// outage unchanged in substance.
package domain
