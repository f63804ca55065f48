package notify

import (
	"context"
	"errors"

	"github.com/Alias1177/Recommender/models"
)

// Multi fans a recommendation out to several notifiers. Every notifier is
// tried; the errors are joined.
type Multi []models.Notifier

// Notify calls every notifier in order
func (m Multi) Notify(ctx context.Context, rec models.FinalRecommendation) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
