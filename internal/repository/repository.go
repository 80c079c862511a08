package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendorx/marketplace/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("repository: duplicate record")
)

const (
	uniqueViolation = "23505"
	// invalidTextRepresentation is raised for ids that are not valid uuids.
	invalidTextRepresentation = "22P02"
)

// Pooler yields the shared Postgres pool, connecting on first use.
type Pooler interface {
	Pool(ctx context.Context) (*pgxpool.Pool, error)
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return ErrDuplicate
		case invalidTextRepresentation:
			return ErrNotFound
		}
	}
	return err
}

// contactFrom builds a contact from LEFT JOIN columns; nil when the owner
// has no row in users.
func contactFrom(name, location *string) *domain.Contact {
	if name == nil {
		return nil
	}
	contact := &domain.Contact{Name: *name}
	if location != nil {
		contact.Location = *location
	}
	return contact
}
