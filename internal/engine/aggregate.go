package engine

import (
	"strings"
	"time"

	"github.com/mindwell/wellness-api/internal/models"
)

// Timestamp layouts accepted from the tracker, tried in order. The frontend
// sends ISO-8601 with an optional trailing "Z"; older records carry Python
// isoformat strings with microsecond precision and no zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Aggregate flattens visit groups into per-page totals. Records with a blank
// page are skipped; unparseable durations count as zero engagement and
// unparseable timestamps fall back to now. Timestamps are normalized to a
// timezone-naive representation (the offset is stripped) so that recency
// subtraction against now is well-defined. Known limitation: visits recorded
// in different zones are compared as if naive.
func Aggregate(groups []models.VisitGroup, now time.Time) map[string]PageStats {
	stats := make(map[string]PageStats)

	for _, group := range groups {
		for _, visit := range group.Visits {
			if strings.TrimSpace(visit.Page) == "" {
				continue
			}

			s := stats[visit.Page]
			s.TotalTime += ParseDuration(visit.TimeSpent)
			s.VisitCount++
			s.Timestamps = append(s.Timestamps, parseTimestamp(visit.Timestamp, now))
			stats[visit.Page] = s
		}
	}

	for page, s := range stats {
		if s.VisitCount > 0 {
			s.AvgTime = s.TotalTime / float64(s.VisitCount)
		}
		stats[page] = s
	}

	return stats
}

// parseTimestamp parses an ISO-8601 timestamp leniently, returning fallback
// when the value is missing or malformed. Offsets are dropped: the wall-clock
// fields are kept and reinterpreted as UTC.
func parseTimestamp(raw string, fallback time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return stripZone(fallback)
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return stripZone(t)
		}
	}

	return stripZone(fallback)
}

func stripZone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
