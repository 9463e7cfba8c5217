// Package schema defines universal data structures shared by the newsdesk
// server engine and the client SDK. Both sides of the wire use these shapes
// verbatim so that optimistic and authoritative state stay structurally
// compatible.
package schema

// Status is the workflow state of an article.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusInReview  Status = "IN_REVIEW"
	StatusScheduled Status = "SCHEDULED"
	StatusPublished Status = "PUBLISHED"
)

// Priority is the editorial priority of an article.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Rank maps a priority to its sort rank (HIGH=3, MEDIUM=2, LOW=1).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

// AuditAction classifies the state transition an audit entry records.
type AuditAction string

const (
	ActionCreated      AuditAction = "CREATED"
	ActionUpdated      AuditAction = "UPDATED"
	ActionSentToReview AuditAction = "SENT_TO_REVIEW"
	ActionScheduled    AuditAction = "SCHEDULED"
	ActionPublished    AuditAction = "PUBLISHED"
)

// FieldChange is the before/after pair for one tracked field.
// Nil means the field was absent on that side.
type FieldChange struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

// AuditDiff maps a tracked field name to its change.
type AuditDiff map[string]FieldChange

// AuditEvent is an immutable record of one state transition.
// Diff is omitted entirely when no tracked field changed.
type AuditEvent struct {
	ID      string      `json:"id"`
	TS      string      `json:"ts"`
	Actor   string      `json:"actor"`
	Action  AuditAction `json:"action"`
	Message string      `json:"message"`
	Diff    AuditDiff   `json:"diff,omitempty"`
}

// Article is a content item tracked through the editorial workflow.
// Timestamps are RFC 3339 strings; an empty ScheduledAt means "not scheduled".
// AuditLog is ordered newest first.
type Article struct {
	ID       string `json:"id"`
	Headline string `json:"headline"`

	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`

	Category string `json:"category"`
	Region   string `json:"region"`
	Author   string `json:"author"`

	UpdatedAt   string `json:"updatedAt"`
	ScheduledAt string `json:"scheduledAt,omitempty"`

	Tags         []string `json:"tags"`
	HasHeroImage bool     `json:"hasHeroImage"`
	HasCaption   bool     `json:"hasCaption"`

	AuditLog []AuditEvent `json:"auditLog"`
}

// Clone returns a deep copy of the article. Cached lists hand out clones so
// a speculative rewrite can never leak into a rollback snapshot.
func (a Article) Clone() Article {
	c := a
	c.Tags = append([]string(nil), a.Tags...)
	if a.AuditLog == nil {
		return c
	}
	c.AuditLog = make([]AuditEvent, len(a.AuditLog))
	for i, e := range a.AuditLog {
		c.AuditLog[i] = e
		if e.Diff != nil {
			d := make(AuditDiff, len(e.Diff))
			for k, v := range e.Diff {
				d[k] = v
			}
			c.AuditLog[i].Diff = d
		}
	}
	return c
}

// ArticlePatch is a partial article. Only non-nil fields are merged.
// Setting ScheduledAt to the empty string clears the schedule.
type ArticlePatch struct {
	Headline    *string   `json:"headline,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Region      *string   `json:"region,omitempty"`
	Author      *string   `json:"author,omitempty"`
	ScheduledAt *string   `json:"scheduledAt,omitempty"`

	Tags         *[]string `json:"tags,omitempty"`
	HasHeroImage *bool     `json:"hasHeroImage,omitempty"`
	HasCaption   *bool     `json:"hasCaption,omitempty"`
}
