package models

import "testing"

func TestMergeVisitGroupsByPage(t *testing.T) {
	t.Parallel()

	doc := &TrackingDocument{Email: "user@example.com"}

	doc.MergeVisit(VisitRecord{Page: "/chat", TimeSpent: "30 seconds", Timestamp: "2026-08-27T10:00:00Z"})
	doc.MergeVisit(VisitRecord{Page: "/journal", TimeSpent: "10 seconds", Timestamp: "2026-08-27T10:01:00Z"})
	doc.MergeVisit(VisitRecord{Page: "/chat", TimeSpent: "45 seconds", Timestamp: "2026-08-27T10:02:00Z"})

	if len(doc.UserVisits) != 2 {
		t.Fatalf("groups = %d, want 2", len(doc.UserVisits))
	}

	chat := doc.UserVisits[0]
	if chat.Count != 2 || len(chat.Visits) != 2 {
		t.Errorf("chat group count = %d, visits = %d, want 2/2", chat.Count, len(chat.Visits))
	}
	if chat.Visits[1].TimeSpent != "45 seconds" {
		t.Errorf("appended visit timeSpent = %q", chat.Visits[1].TimeSpent)
	}

	journal := doc.UserVisits[1]
	if journal.Count != 1 || len(journal.Visits) != 1 {
		t.Errorf("journal group count = %d, visits = %d, want 1/1", journal.Count, len(journal.Visits))
	}

	if doc.TotalVisits() != 3 {
		t.Errorf("TotalVisits = %d, want 3", doc.TotalVisits())
	}
}

func TestMergeVisitIgnoresBlankPage(t *testing.T) {
	t.Parallel()

	doc := &TrackingDocument{Email: "user@example.com"}
	doc.MergeVisit(VisitRecord{Page: "   ", TimeSpent: "5 seconds"})
	doc.MergeVisit(VisitRecord{Page: "", TimeSpent: "5 seconds"})

	if len(doc.UserVisits) != 0 {
		t.Errorf("groups = %d, want 0", len(doc.UserVisits))
	}
}

func TestMergeVisitKeepsCountInvariant(t *testing.T) {
	t.Parallel()

	doc := &TrackingDocument{Email: "user@example.com"}
	pages := []string{"/chat", "/chat", "/journal", "/chat", "/exercises", "/journal"}
	for _, page := range pages {
		doc.MergeVisit(VisitRecord{Page: page, TimeSpent: "1 second"})
	}

	for _, group := range doc.UserVisits {
		if group.Count != len(group.Visits) {
			t.Errorf("group count = %d, visits = %d", group.Count, len(group.Visits))
		}
	}
}
