// Package audit implements the diff and transition-classification logic
// shared by the server engine and the client SDK. It is deliberately a single
// pure module: the optimistic entry the client synthesizes and the
// authoritative entry the server appends must be computed by the exact same
// code or the dashboard would visibly diverge from server truth.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/newsdesk-dev/newsdesk-queue/pkg/schema"
)

// DefaultActor is the attribution recorded on generated audit entries.
const DefaultActor = "newsroom.ops"

// RecentLimit is how many entries the dashboard shows per article.
const RecentLimit = 12

// scheduleTimeLayout renders the target time in audit messages. The format is
// fixed so client and server produce byte-identical messages.
const scheduleTimeLayout = "Jan 2, 2006 3:04 PM"

// TrackedFields is the fixed, ordered set of fields eligible for diffing.
var TrackedFields = []string{"status", "priority", "scheduledAt", "category", "region", "author", "headline"}

// Normalize maps a raw field value to its diff representation.
// The empty string and absence are the same null sentinel.
func Normalize(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func trackedValue(a schema.Article, field string) string {
	switch field {
	case "status":
		return string(a.Status)
	case "priority":
		return string(a.Priority)
	case "scheduledAt":
		return a.ScheduledAt
	case "category":
		return a.Category
	case "region":
		return a.Region
	case "author":
		return a.Author
	case "headline":
		return a.Headline
	}
	return ""
}

// ComputeDiff compares prev and next over the tracked fields and returns the
// changed ones. Returns nil when nothing changed; never an empty map.
func ComputeDiff(prev, next schema.Article) schema.AuditDiff {
	diff := schema.AuditDiff{}
	for _, field := range TrackedFields {
		from := Normalize(trackedValue(prev, field))
		to := Normalize(trackedValue(next, field))
		if !equal(from, to) {
			diff[field] = schema.FieldChange{From: from, To: to}
		}
	}
	if len(diff) == 0 {
		return nil
	}
	return diff
}

func equal(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Classify maps a patch to the audit action and message describing it.
// The rule is shared verbatim by client speculation and server authority:
//   - status -> IN_REVIEW is a review handoff
//   - status -> PUBLISHED is a publish
//   - status -> SCHEDULED with a target time is a schedule
//   - anything else is a plain update
func Classify(patch schema.ArticlePatch) (schema.AuditAction, string) {
	if patch.Status != nil {
		switch *patch.Status {
		case schema.StatusInReview:
			return schema.ActionSentToReview, "Sent to editorial review"
		case schema.StatusPublished:
			return schema.ActionPublished, "Published to site"
		case schema.StatusScheduled:
			if patch.ScheduledAt != nil && *patch.ScheduledAt != "" {
				return schema.ActionScheduled, "Scheduled for " + FormatScheduleTime(*patch.ScheduledAt)
			}
		}
	}
	return schema.ActionUpdated, "Article updated"
}

// FormatScheduleTime renders an RFC 3339 timestamp for audit messages.
// Unparseable input is passed through as-is.
func FormatScheduleTime(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format(scheduleTimeLayout)
}

// MergePatch applies the non-nil fields of patch on top of prev.
// It does not touch UpdatedAt or the audit log; callers own those.
func MergePatch(prev schema.Article, patch schema.ArticlePatch) schema.Article {
	next := prev.Clone()
	if patch.Headline != nil {
		next.Headline = *patch.Headline
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}
	if patch.Priority != nil {
		next.Priority = *patch.Priority
	}
	if patch.Category != nil {
		next.Category = *patch.Category
	}
	if patch.Region != nil {
		next.Region = *patch.Region
	}
	if patch.Author != nil {
		next.Author = *patch.Author
	}
	if patch.ScheduledAt != nil {
		next.ScheduledAt = *patch.ScheduledAt
	}
	if patch.Tags != nil {
		next.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.HasHeroImage != nil {
		next.HasHeroImage = *patch.HasHeroImage
	}
	if patch.HasCaption != nil {
		next.HasCaption = *patch.HasCaption
	}
	return next
}

// NewEvent builds an audit entry with a fresh id and timestamp.
func NewEvent(action schema.AuditAction, message string, diff schema.AuditDiff) schema.AuditEvent {
	return schema.AuditEvent{
		ID:      uuid.NewString(),
		TS:      time.Now().UTC().Format(time.RFC3339),
		Actor:   DefaultActor,
		Action:  action,
		Message: message,
		Diff:    diff,
	}
}

// Prepend adds an entry to the front of a log (newest first).
func Prepend(log []schema.AuditEvent, evt schema.AuditEvent) []schema.AuditEvent {
	out := make([]schema.AuditEvent, 0, len(log)+1)
	out = append(out, evt)
	return append(out, log...)
}

// Recent returns the newest n entries for display.
func Recent(log []schema.AuditEvent, n int) []schema.AuditEvent {
	if len(log) <= n {
		return log
	}
	return log[:n]
}
