package evidence

import (
	"errors"
	"fmt"
	"time"

	"github.com/karimelghouat/techstack-reality-check/internal/model"
)

// ErrBadTimestamp marks a record whose timestamps cannot be parsed.
// It is fatal for the whole batch; ages are never invented.
var ErrBadTimestamp = errors.New("malformed timestamp")

// Normalizer converts raw issue-tracker records into uniform evidence.
// The "now" timestamp is threaded in explicitly so age computation is
// reproducible under replay.
type Normalizer struct{}

// NewNormalizer creates a new normalizer
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize converts one raw record into an Issue. Pull requests are not
// evidence: they return (nil, false, nil). A malformed timestamp is an
// error; the normalizer never invents or defaults dates.
func (n *Normalizer) Normalize(raw *model.RawIssue, now time.Time) (*model.Issue, bool, error) {
	if raw.IsPullRequest() {
		return nil, false, nil
	}

	createdAt, err := time.Parse(time.RFC3339, raw.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("issue #%d: created_at %q: %w", raw.Number, raw.CreatedAt, ErrBadTimestamp)
	}
	updatedAt, err := time.Parse(time.RFC3339, raw.UpdatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("issue #%d: updated_at %q: %w", raw.Number, raw.UpdatedAt, ErrBadTimestamp)
	}

	// Whole-day truncation, not rounding
	ageDays := int(now.Sub(createdAt).Hours() / 24)
	if ageDays < 0 {
		ageDays = 0
	}

	labels := make([]string, 0, len(raw.Labels))
	for _, l := range raw.Labels {
		labels = append(labels, l.Name)
	}

	return &model.Issue{
		ID:                raw.ID,
		Number:            raw.Number,
		Title:             raw.Title,
		State:             raw.State,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
		AgeDays:           ageDays,
		CommentCount:      raw.Comments,
		Labels:            labels,
		AuthorAssociation: raw.AuthorAssociation,
		Body:              raw.Body,
	}, true, nil
}

// NormalizeAll converts a batch of raw records, skipping pull requests.
// Any malformed timestamp is fatal for the whole batch.
func (n *Normalizer) NormalizeAll(raws []model.RawIssue, now time.Time) ([]model.Issue, error) {
	issues := make([]model.Issue, 0, len(raws))
	for i := range raws {
		issue, ok, err := n.Normalize(&raws[i], now)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		issues = append(issues, *issue)
	}
	return issues, nil
}
