package score

import (
	"testing"

	"github.com/karimelghouat/techstack-reality-check/internal/model"
)

func TestRuleEngine_BothRulesOnOneIssue(t *testing.T) {
	e := NewRuleEngine()

	// Zombie (+30) and silent-failure (+20) are additive, not exclusive
	issues := []model.Issue{
		{Title: "AsyncRetriever hangs indefinitely under load", Labels: []string{"bug"}, AgeDays: 63},
	}

	if got := e.BasePenalty(issues); got != 50 {
		t.Errorf("Expected penalty 50 (30 zombie + 20 silent failure), got %d", got)
	}
}

func TestRuleEngine_EmptyEvidence(t *testing.T) {
	e := NewRuleEngine()

	if got := e.BasePenalty(nil); got != 0 {
		t.Errorf("Expected 0 for empty evidence, got %d", got)
	}
}

func TestRuleEngine_ZombieRequiresBothConditions(t *testing.T) {
	e := NewRuleEngine()

	tests := []struct {
		name  string
		issue model.Issue
		want  int
	}{
		{"old but unlabeled", model.Issue{Title: "Docs typo", AgeDays: 100}, 0},
		{"labeled but fresh", model.Issue{Title: "Crash on start", Labels: []string{"bug"}, AgeDays: 10}, 0},
		{"exactly 60 days is not stale", model.Issue{Title: "Crash", Labels: []string{"critical"}, AgeDays: 60}, 0},
		{"61 days qualifies", model.Issue{Title: "Crash", Labels: []string{"critical"}, AgeDays: 61}, 30},
		{"label match is case-insensitive", model.Issue{Title: "Crash", Labels: []string{"BUG"}, AgeDays: 90}, 30},
		{"p0 qualifies", model.Issue{Title: "Crash", Labels: []string{"P0"}, AgeDays: 90}, 30},
	}

	for _, tt := range tests {
		if got := e.BasePenalty([]model.Issue{tt.issue}); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}

func TestRuleEngine_SilentFailureKeywords(t *testing.T) {
	e := NewRuleEngine()

	tests := []struct {
		title string
		want  int
	}{
		{"Worker DEADLOCK when queue is full", 20},
		{"App freezes after resume", 20},
		{"Silent data loss on retry", 20},
		{"Infinite loop in parser", 20},
		{"Server hangs on shutdown", 20},
		{"Slow response times", 0},
	}

	for _, tt := range tests {
		issues := []model.Issue{{Title: tt.title}}
		if got := e.BasePenalty(issues); got != tt.want {
			t.Errorf("title %q: expected %d, got %d", tt.title, tt.want, got)
		}
	}
}

func TestRuleEngine_CapAppliedOnceToTotal(t *testing.T) {
	e := NewRuleEngine()

	// 3 issues x 50 points each = 150, capped at 60
	issues := make([]model.Issue, 3)
	for i := range issues {
		issues[i] = model.Issue{Title: "System hangs", Labels: []string{"bug"}, AgeDays: 100}
	}

	if got := e.BasePenalty(issues); got != BaseCap {
		t.Errorf("Expected cap %d, got %d", BaseCap, got)
	}
}

func TestRuleEngine_OrderIndependentAndIdempotent(t *testing.T) {
	e := NewRuleEngine()

	a := model.Issue{Title: "Deadlock in pool", Labels: []string{"bug"}, AgeDays: 70}
	b := model.Issue{Title: "Feature request", AgeDays: 5}
	c := model.Issue{Title: "UI freeze on scroll"}

	forward := e.BasePenalty([]model.Issue{a, b, c})
	reversed := e.BasePenalty([]model.Issue{c, b, a})
	if forward != reversed {
		t.Errorf("Expected order independence, got %d vs %d", forward, reversed)
	}

	again := e.BasePenalty([]model.Issue{a, b, c})
	if forward != again {
		t.Errorf("Expected idempotence, got %d then %d", forward, again)
	}
}

func TestRuleEngine_MonotonicUnderAddedEvidence(t *testing.T) {
	e := NewRuleEngine()

	issues := []model.Issue{}
	prev := 0
	add := []model.Issue{
		{Title: "Feature request"},
		{Title: "App hangs on boot"},
		{Title: "Old crash", Labels: []string{"critical"}, AgeDays: 200},
		{Title: "Another deadlock", Labels: []string{"p1"}, AgeDays: 90},
	}

	for _, issue := range add {
		issues = append(issues, issue)
		got := e.BasePenalty(issues)
		if got < prev {
			t.Errorf("Expected non-decreasing penalty, got %d after %d", got, prev)
		}
		if got > BaseCap {
			t.Errorf("Expected penalty within [0,%d], got %d", BaseCap, got)
		}
		prev = got
	}
}
