package engine

import "time"

// Base-score weights. These are heuristic configuration, not a learned
// model: total seconds contribute lightly, visit frequency heavily, average
// session depth in between.
const (
	totalTimeWeight  = 0.1
	visitCountWeight = 5.0
	avgTimeWeight    = 0.2

	// Recency decays linearly by 10% per day since last visit, floored at
	// 0.1 (reached at 9+ days, or when a page has no timestamps at all).
	recencyDecayPerDay = 0.1
	recencyFloor       = 0.1
)

// ScorePages computes a weighted engagement score per page. Excluded pages
// (/login, /register, /logout, /) never appear in the result.
func ScorePages(stats map[string]PageStats, now time.Time) map[string]PageScore {
	scores := make(map[string]PageScore, len(stats))
	naiveNow := stripZone(now)

	for page, s := range stats {
		if PageExcluded(page) {
			continue
		}

		base := s.TotalTime*totalTimeWeight + float64(s.VisitCount)*visitCountWeight + s.AvgTime*avgTimeWeight

		var lastVisit time.Time
		for _, ts := range s.Timestamps {
			if ts.After(lastVisit) {
				lastVisit = ts
			}
		}

		recency := recencyFloor
		if !lastVisit.IsZero() {
			days := naiveNow.Sub(lastVisit).Hours() / 24
			if days < 0 {
				days = 0
			}
			recency = 1.0 - days*recencyDecayPerDay
			if recency < recencyFloor {
				recency = recencyFloor
			}
		}

		info := lookupPage(page)

		scores[page] = PageScore{
			Score:          base * recency * info.weight,
			BaseScore:      base,
			RecencyFactor:  recency,
			CategoryWeight: info.weight,
			Category:       info.category,
			LastVisit:      lastVisit,
			Stats:          s,
		}
	}

	return scores
}
