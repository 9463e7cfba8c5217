package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/newsdesk-dev/newsdesk-queue/pkg/audit"
	"github.com/newsdesk-dev/newsdesk-queue/pkg/schema"
)

var (
	seedCategories = []string{"Politics", "Business", "Sports", "Entertainment", "Technology", "Health", "World", "Regional"}
	seedRegions    = []string{"Gujarat", "Delhi NCR", "Maharashtra", "Rajasthan", "Madhya Pradesh", "Uttar Pradesh", "Punjab", "National"}
	seedAuthors    = []string{"Desk", "Newsroom Staff", "Reporter", "Regional Bureau", "Editorial Team"}
	seedTags       = []string{"election", "market", "policy", "crime", "weather", "startup", "budget", "match", "breaking", "exclusive"}
)

// SeedArticles generates a plausible corpus of articles for a fresh store:
// weighted statuses and priorities, recent update times, future schedule
// times, and an audit history consistent with each article's status.
func SeedArticles(n int) []schema.Article {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()

	articles := make([]schema.Article, 0, n)
	for i := 0; i < n; i++ {
		category := pick(rng, seedCategories)
		region := pick(rng, seedRegions)
		status := randomStatus(rng)
		priority := randomPriority(rng)

		updatedAt := now.
			Add(-time.Duration(rng.Intn(14)) * 24 * time.Hour).
			Add(-time.Duration(rng.Intn(8)) * time.Hour)

		scheduledAt := ""
		if status == schema.StatusScheduled {
			scheduledAt = now.Add(time.Duration(rng.Intn(72)+1) * time.Hour).Format(time.RFC3339)
		}

		// Newest first, like every live audit log.
		var log []schema.AuditEvent
		switch status {
		case schema.StatusInReview:
			log = append(log, seedEvent(schema.ActionSentToReview, "Sent to editorial review"))
		case schema.StatusScheduled:
			log = append(log, seedEvent(schema.ActionScheduled, "Scheduled for "+audit.FormatScheduleTime(scheduledAt)))
		case schema.StatusPublished:
			log = append(log, seedEvent(schema.ActionPublished, "Published to site"))
		}
		log = append(log,
			seedEvent(schema.ActionUpdated, "Initial metadata set"),
			seedEvent(schema.ActionCreated, "Article created"),
		)

		tagCount := 3
		if rng.Float64() < 0.6 {
			tagCount = 2
		}
		tags := make([]string, tagCount)
		for t := range tags {
			tags[t] = pick(rng, seedTags)
		}

		articles = append(articles, schema.Article{
			ID:           uuid.NewString(),
			Headline:     fmt.Sprintf("%s #%d", randomHeadline(rng, category, region), i+1),
			Status:       status,
			Priority:     priority,
			Category:     category,
			Region:       region,
			Author:       pick(rng, seedAuthors),
			UpdatedAt:    updatedAt.Format(time.RFC3339),
			ScheduledAt:  scheduledAt,
			Tags:         tags,
			HasHeroImage: rng.Float64() < 0.75,
			HasCaption:   rng.Float64() < 0.7,
			AuditLog:     log,
		})
	}
	return articles
}

func seedEvent(action schema.AuditAction, message string) schema.AuditEvent {
	return audit.NewEvent(action, message, nil)
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func randomHeadline(rng *rand.Rand, category, region string) string {
	templates := []string{
		fmt.Sprintf("%s: key developments in %s today", region, category),
		fmt.Sprintf("What to know: %s update from %s", category, region),
		fmt.Sprintf("%s briefing: latest signals from %s", category, region),
		fmt.Sprintf("%s roundup: top %s stories", region, category),
	}
	return templates[rng.Intn(len(templates))]
}

func randomPriority(rng *rand.Rand) schema.Priority {
	r := rng.Float64()
	switch {
	case r < 0.15:
		return schema.PriorityHigh
	case r < 0.55:
		return schema.PriorityMedium
	default:
		return schema.PriorityLow
	}
}

func randomStatus(rng *rand.Rand) schema.Status {
	r := rng.Float64()
	switch {
	case r < 0.55:
		return schema.StatusDraft
	case r < 0.75:
		return schema.StatusInReview
	case r < 0.9:
		return schema.StatusScheduled
	default:
		return schema.StatusPublished
	}
}
