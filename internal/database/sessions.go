package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kouk/grawity-code/internal/models"

	"gorm.io/gorm"
)

// ErrUnavailable is wrapped by every retrieval failure, so callers can tell
// a broken store apart from an empty result.
var ErrUnavailable = errors.New("rwho data unavailable")

// SessionStore is the read side of the utmp table.
type SessionStore struct {
	DB *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{DB: db}
}

// Retrieve returns the sessions matching user and host, ordered by user,
// host, line and then freshest first. Empty arguments match everything.
//
// A host filter matches the host itself and any subdomain of it; both
// ignore ASCII case. A filter without a dot is taken to be a short name and
// also matches any FQDN that starts with it, so "db1" finds
// "db1.example.com".
func (s *SessionStore) Retrieve(ctx context.Context, user, host string) ([]models.Session, error) {
	if s == nil || s.DB == nil {
		return nil, fmt.Errorf("%w: no database", ErrUnavailable)
	}

	q := s.DB.WithContext(ctx).Model(&models.Session{})
	if user != "" {
		q = q.Where("user = ?", user)
	}
	if host != "" {
		like := escapeLike(host)
		if strings.Contains(host, ".") {
			q = q.Where(`(host = ? COLLATE NOCASE OR host LIKE ? ESCAPE '\')`, host, "%."+like)
		} else {
			q = q.Where(`(host = ? COLLATE NOCASE OR host LIKE ? ESCAPE '\' OR host LIKE ? ESCAPE '\')`,
				host, like+".%", "%."+like)
		}
	}

	var rows []models.Session
	if err := q.Order("user, host, line, updated DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return rows, nil
}

// Ping checks that the store can be reached.
func (s *SessionStore) Ping(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return fmt.Errorf("%w: no database", ErrUnavailable)
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
