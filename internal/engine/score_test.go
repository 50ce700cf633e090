package engine

import (
	"math"
	"testing"
	"time"
)

func statsFor(total float64, visits int, last time.Time) PageStats {
	avg := 0.0
	if visits > 0 {
		avg = total / float64(visits)
	}
	return PageStats{
		TotalTime:  total,
		VisitCount: visits,
		Timestamps: []time.Time{last},
		AvgTime:    avg,
	}
}

func TestScorePagesChatToday(t *testing.T) {
	t.Parallel()

	// 200s over 4 visits today: base = 200*0.1 + 4*5 + 50*0.2 = 50,
	// recency 1.0, category weight 1.0 -> score 50.
	stats := map[string]PageStats{
		"/chat": statsFor(200, 4, testNow),
	}

	scores := ScorePages(stats, testNow)
	chat, ok := scores["/chat"]
	if !ok {
		t.Fatal("expected /chat to be scored")
	}

	if math.Abs(chat.BaseScore-50) > 1e-9 {
		t.Errorf("BaseScore = %v, want 50", chat.BaseScore)
	}
	if chat.RecencyFactor != 1.0 {
		t.Errorf("RecencyFactor = %v, want 1.0", chat.RecencyFactor)
	}
	if chat.CategoryWeight != 1.0 {
		t.Errorf("CategoryWeight = %v, want 1.0", chat.CategoryWeight)
	}
	if chat.Category != CategoryMentalHealth {
		t.Errorf("Category = %v, want %v", chat.Category, CategoryMentalHealth)
	}
	if math.Abs(chat.Score-50) > 1e-9 {
		t.Errorf("Score = %v, want 50", chat.Score)
	}
}

// Auth and root pages never become scoring candidates, no matter the
// engagement.
func TestScorePagesExcludesAuthPages(t *testing.T) {
	t.Parallel()

	stats := map[string]PageStats{
		"/login":    statsFor(10000, 50, testNow),
		"/register": statsFor(10000, 50, testNow),
		"/logout":   statsFor(10000, 50, testNow),
		"/":         statsFor(10000, 50, testNow),
		"/chat":     statsFor(60, 2, testNow),
	}

	scores := ScorePages(stats, testNow)
	if len(scores) != 1 {
		t.Fatalf("expected only /chat to be scored, got %d entries", len(scores))
	}
	for _, page := range []string{"/login", "/register", "/logout", "/"} {
		if _, ok := scores[page]; ok {
			t.Errorf("excluded page %s appeared in scores", page)
		}
	}
}

func TestRecencyDecay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		daysAgo  float64
		wantFact float64
	}{
		{name: "today", daysAgo: 0, wantFact: 1.0},
		{name: "three days", daysAgo: 3, wantFact: 0.7},
		{name: "nine days floors", daysAgo: 9, wantFact: 0.1},
		{name: "month old floors", daysAgo: 30, wantFact: 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			last := testNow.Add(-time.Duration(tt.daysAgo*24) * time.Hour)
			scores := ScorePages(map[string]PageStats{"/chat": statsFor(100, 2, last)}, testNow)
			got := scores["/chat"].RecencyFactor
			if math.Abs(got-tt.wantFact) > 1e-9 {
				t.Errorf("RecencyFactor = %v, want %v", got, tt.wantFact)
			}
		})
	}
}

// Recency is monotone non-increasing in days since last visit.
func TestRecencyMonotone(t *testing.T) {
	t.Parallel()

	prev := math.Inf(1)
	for days := 0; days <= 15; days++ {
		last := testNow.Add(-time.Duration(days) * 24 * time.Hour)
		scores := ScorePages(map[string]PageStats{"/chat": statsFor(100, 2, last)}, testNow)
		got := scores["/chat"].RecencyFactor
		if got > prev {
			t.Fatalf("recency increased at %d days: %v > %v", days, got, prev)
		}
		if got < recencyFloor {
			t.Fatalf("recency %v below floor at %d days", got, days)
		}
		prev = got
	}
}

func TestScoreNoTimestamps(t *testing.T) {
	t.Parallel()

	scores := ScorePages(map[string]PageStats{
		"/chat": {TotalTime: 100, VisitCount: 2, AvgTime: 50},
	}, testNow)

	if got := scores["/chat"].RecencyFactor; got != recencyFloor {
		t.Errorf("RecencyFactor without timestamps = %v, want %v", got, recencyFloor)
	}
}

// Increasing total time or visit count never decreases a page's score.
func TestScoreMonotoneInEngagement(t *testing.T) {
	t.Parallel()

	base := ScorePages(map[string]PageStats{"/chat": statsFor(100, 2, testNow)}, testNow)["/chat"].Score

	moreTime := ScorePages(map[string]PageStats{"/chat": statsFor(150, 2, testNow)}, testNow)["/chat"].Score
	if moreTime < base {
		t.Errorf("score decreased with more time: %v < %v", moreTime, base)
	}

	moreVisits := ScorePages(map[string]PageStats{"/chat": statsFor(100, 3, testNow)}, testNow)["/chat"].Score
	if moreVisits < base {
		t.Errorf("score decreased with more visits: %v < %v", moreVisits, base)
	}
}

func TestUnknownPageDefaults(t *testing.T) {
	t.Parallel()

	scores := ScorePages(map[string]PageStats{"/mystery": statsFor(100, 2, testNow)}, testNow)
	s := scores["/mystery"]
	if s.Category != CategoryOther {
		t.Errorf("Category = %v, want %v", s.Category, CategoryOther)
	}
	if s.CategoryWeight != 0.5 {
		t.Errorf("CategoryWeight = %v, want 0.5", s.CategoryWeight)
	}
}
