package presence

import (
	"context"

	"github.com/kouk/grawity-code/internal/models"
)

// Source returns session records ordered by user, host, line and freshest
// first.
type Source interface {
	Retrieve(ctx context.Context, user, host string) ([]models.Session, error)
}

// Lookup reads the sessions matching f and summarizes them.
func Lookup(ctx context.Context, src Source, f Filter) ([]Row, error) {
	sessions, err := src.Retrieve(ctx, f.User, f.Host)
	if err != nil {
		return nil, err
	}
	return Summarize(sessions), nil
}
