package weather

import (
	"sort"
	"time"
)

// AggregateDaily folds time-ordered sub-day samples into at most maxDays
// day-level summaries, ascending by date.
//
// Days are keyed by the UTC calendar date of each sample. For every day the
// summary carries the min and max temperature, the arithmetic mean humidity,
// the maximum precipitation probability, and the condition of the sample
// closest to 12:00 UTC (ties resolved toward the earliest such sample).
// A partial trailing day is summarized from whatever samples exist for it.
// An empty input yields an empty result, never an error.
func AggregateDaily(samples []Sample, maxDays int) []DailySummary {
	if len(samples) == 0 || maxDays < 1 {
		return nil
	}

	// Input is expected to be time-ordered already; sort defensively so a
	// misbehaving provider cannot split one day into two buckets.
	ordered := make([]Sample, len(samples))
	copy(ordered, samples)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	byDay := make(map[string][]Sample)
	var dayKeys []string
	for _, s := range ordered {
		key := s.Timestamp.UTC().Format("2006-01-02")
		if _, seen := byDay[key]; !seen {
			dayKeys = append(dayKeys, key)
		}
		byDay[key] = append(byDay[key], s)
	}
	sort.Strings(dayKeys)

	summaries := make([]DailySummary, 0, maxDays)
	for _, key := range dayKeys {
		if len(summaries) >= maxDays {
			break
		}
		summaries = append(summaries, summarizeDay(key, byDay[key]))
	}
	return summaries
}

// summarizeDay reduces one non-empty day bucket to its summary.
func summarizeDay(key string, group []Sample) DailySummary {
	date, _ := time.ParseInLocation("2006-01-02", key, time.UTC)
	noon := date.Add(12 * time.Hour)

	first := group[0]
	summary := DailySummary{
		Date:            date,
		MinTemperatureC: first.TemperatureC,
		MaxTemperatureC: first.TemperatureC,
		Condition:       first.Condition,
		Description:     first.Description,
		SampleCount:     len(group),
	}

	var humiditySum float64
	bestDistance := time.Duration(-1)
	for _, s := range group {
		if s.TemperatureC < summary.MinTemperatureC {
			summary.MinTemperatureC = s.TemperatureC
		}
		if s.TemperatureC > summary.MaxTemperatureC {
			summary.MaxTemperatureC = s.TemperatureC
		}
		humiditySum += s.HumidityPct
		if s.PrecipProbability > summary.MaxPrecipProb {
			summary.MaxPrecipProb = s.PrecipProbability
		}

		// Strict < keeps the earliest sample on equal distance from noon;
		// the group is sorted ascending by timestamp.
		distance := s.Timestamp.UTC().Sub(noon)
		if distance < 0 {
			distance = -distance
		}
		if bestDistance < 0 || distance < bestDistance {
			bestDistance = distance
			summary.Condition = s.Condition
			summary.Description = s.Description
		}
	}
	summary.AvgHumidityPct = humiditySum / float64(len(group))

	return summary
}
