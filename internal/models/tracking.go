package models

import (
	"strings"
	"time"
)

// VisitRecord is a single page visit reported by the frontend tracker.
// TimeSpent is kept as the raw string the tracker sent ("45.5 seconds",
// "2 minutes"); parsing happens in the engine and never fails hard.
type VisitRecord struct {
	Page      string `json:"page"`
	TimeSpent string `json:"timeSpent"`
	Timestamp string `json:"timestamp"`
}

// VisitGroup is one sync batch of visits. Count always equals len(Visits);
// the merge rule below maintains that invariant.
type VisitGroup struct {
	Count  int           `json:"count"`
	Visits []VisitRecord `json:"visits"`
}

// TrackingDocument is the per-user visit history, keyed by email.
type TrackingDocument struct {
	Email      string       `json:"email"`
	UserVisits []VisitGroup `json:"user_visits"`
	UpdatedAt  time.Time    `json:"updated_at,omitempty"`
}

// MergeVisit folds a new visit record into the document. If the page already
// appears in some group's visits the record is appended to that group and its
// count incremented; otherwise a new group is created.
func (d *TrackingDocument) MergeVisit(record VisitRecord) {
	if strings.TrimSpace(record.Page) == "" {
		return
	}
	for i := range d.UserVisits {
		for _, v := range d.UserVisits[i].Visits {
			if v.Page == record.Page {
				d.UserVisits[i].Visits = append(d.UserVisits[i].Visits, record)
				d.UserVisits[i].Count++
				return
			}
		}
	}
	d.UserVisits = append(d.UserVisits, VisitGroup{
		Count:  1,
		Visits: []VisitRecord{record},
	})
}

// TotalVisits returns the number of visit records across all groups.
func (d *TrackingDocument) TotalVisits() int {
	total := 0
	for _, g := range d.UserVisits {
		total += len(g.Visits)
	}
	return total
}
