package core

import "time"

// Evaluation is the persisted record of a single metadata check: the title
// verdict and the label patch that was applied for a given head SHA.
type Evaluation struct {
	ID            int64     `db:"id"`
	RepoFullName  string    `db:"repo_full_name"`
	PRNumber      int       `db:"pr_number"`
	HeadSHA       string    `db:"head_sha"`
	TitleAccepted bool      `db:"title_accepted"`
	TitleReason   string    `db:"title_reason"`
	LabelsAdded   string    `db:"labels_added"`
	LabelsRemoved string    `db:"labels_removed"`
	CreatedAt     time.Time `db:"created_at"`
}
