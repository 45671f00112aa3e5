package model

import "time"

// Issue is a normalized issue-tracker record used as evidence.
// AgeDays is derived once at normalization time relative to an explicit
// "now" and is a snapshot value, never recomputed later.
type Issue struct {
	ID                int64     `json:"id"`
	Number            int       `json:"number"`
	Title             string    `json:"title"`
	State             string    `json:"state"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	AgeDays           int       `json:"days_open"`
	CommentCount      int       `json:"comment_count"`
	Labels            []string  `json:"labels"` // Case-preserved label names
	AuthorAssociation string    `json:"author_association"`
	Body              string    `json:"body"`
}

// RawIssue mirrors the issue-like records returned by the evidence source.
// Records carrying a pull-request marker are not evidence and are skipped
// during normalization.
type RawIssue struct {
	ID                int64               `json:"id"`
	Number            int                 `json:"number"`
	Title             string              `json:"title"`
	State             string              `json:"state"`
	CreatedAt         string              `json:"created_at"`
	UpdatedAt         string              `json:"updated_at"`
	Comments          int                 `json:"comments"`
	Labels            []RawLabel          `json:"labels"`
	AuthorAssociation string              `json:"author_association"`
	Body              string              `json:"body"`
	PullRequest       *RawPullRequestLink `json:"pull_request,omitempty"`
}

// RawLabel is a label object as returned by the evidence source
type RawLabel struct {
	Name string `json:"name"`
}

// RawPullRequestLink marks a record as a pull request.
// Its presence (not its content) is what matters.
type RawPullRequestLink struct {
	URL string `json:"url,omitempty"`
}

// IsPullRequest reports whether the raw record is a pull request
func (r *RawIssue) IsPullRequest() bool {
	return r.PullRequest != nil
}
