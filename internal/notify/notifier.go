package notify

import (
	"context"
	"log"

	"github.com/verdantlabs/herbarium/internal/domain"
)

// Notifier delivers lifecycle notifications to contributors. Delivery is
// best-effort: failures must never block moderation.
type Notifier interface {
	ContributionReviewed(ctx context.Context, contribution domain.Contribution) error
}

// LogNotifier writes notifications to the process log. It stands in for the
// mail collaborator in development and tests.
type LogNotifier struct{}

// ContributionReviewed implements Notifier.
func (LogNotifier) ContributionReviewed(_ context.Context, contribution domain.Contribution) error {
	log.Printf("[NOTIFY] contribution %s for author %s reviewed: %s",
		contribution.ID, contribution.AuthorID, contribution.Status)
	return nil
}
