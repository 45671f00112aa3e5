package score

import (
	"strings"

	"github.com/karimelghouat/techstack-reality-check/internal/model"
)

const (
	zombiePenalty        = 30
	silentFailurePenalty = 20

	// BaseCap bounds the deterministic contribution, reserving headroom
	// for the semantic bonus applied by the aggregator.
	BaseCap = 60

	zombieAgeDays = 60
)

// highPriorityLabels qualify an issue for the zombie-bug rule (case-insensitive)
var highPriorityLabels = map[string]bool{
	"bug":      true,
	"critical": true,
	"p0":       true,
	"p1":       true,
}

// silentFailureKeywords in an issue title signal failures that are hard to observe
var silentFailureKeywords = []string{"hangs", "deadlock", "silent", "freeze", "infinite loop"}

// RuleEngine applies deterministic penalty rules over an evidence set.
// The model cannot override these rules.
type RuleEngine struct{}

// NewRuleEngine creates a new rule engine
func NewRuleEngine() *RuleEngine {
	return &RuleEngine{}
}

// BasePenalty accumulates penalties over all issues and caps the total at
// BaseCap. Both rules can fire on the same record; accumulation is
// order-independent and idempotent.
func (e *RuleEngine) BasePenalty(issues []model.Issue) int {
	penalty := 0
	for i := range issues {
		if IsZombie(&issues[i]) {
			penalty += zombiePenalty
		}
		if IsSilentFailure(&issues[i]) {
			penalty += silentFailurePenalty
		}
	}
	if penalty > BaseCap {
		penalty = BaseCap
	}
	return penalty
}

// IsZombie reports whether the issue is a stale high-priority defect:
// open for more than 60 days and carrying a high-priority label.
func IsZombie(issue *model.Issue) bool {
	if issue.AgeDays <= zombieAgeDays {
		return false
	}
	for _, label := range issue.Labels {
		if highPriorityLabels[strings.ToLower(label)] {
			return true
		}
	}
	return false
}

// IsSilentFailure reports whether the issue title contains a silent-failure keyword
func IsSilentFailure(issue *model.Issue) bool {
	title := strings.ToLower(issue.Title)
	for _, kw := range silentFailureKeywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}
