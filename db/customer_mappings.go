package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = pq.ErrorCode("23505")

// CustomerMapping links a local user to the payment provider customer
// provisioned for it. At most one row per user may be active; soft deleted
// rows (deleted_at set) are kept for bookkeeping but ignored by lookups.
type CustomerMapping struct {
	UserID     string
	CustomerID string
	CreatedAt  time.Time
	DeletedAt  *time.Time
}

// CustomerID returns the provider customer id of the active mapping for the
// given user. It returns ErrNotFound when the user has no active mapping.
func (s *Storage) CustomerID(userID string) (string, error) {
	var customerID string
	err := s.db.QueryRow(
		`SELECT customer_id FROM stripe_customers WHERE user_id = $1 AND deleted_at IS NULL`,
		userID,
	).Scan(&customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("could not fetch customer mapping: %w", err)
	}
	return customerID, nil
}

// SetCustomerMapping stores a new mapping between the user and the provider
// customer. Rows are never updated in place. It returns ErrAlreadyExists when
// another active mapping for the user is already present, which callers treat
// as a lost creation race.
func (s *Storage) SetCustomerMapping(userID, customerID string) error {
	_, err := s.db.Exec(
		`INSERT INTO stripe_customers (user_id, customer_id) VALUES ($1, $2)`,
		userID, customerID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}
		return fmt.Errorf("could not store customer mapping: %w", err)
	}
	return nil
}

// DeleteCustomerMapping soft deletes the active mapping for the user by
// setting deleted_at. The row stays in the table; only lookups stop seeing
// it. Deleting a user with no active mapping is a no-op.
func (s *Storage) DeleteCustomerMapping(userID string) error {
	_, err := s.db.Exec(
		`UPDATE stripe_customers SET deleted_at = now() WHERE user_id = $1 AND deleted_at IS NULL`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("could not delete customer mapping: %w", err)
	}
	return nil
}

// CustomerMappings returns every mapping stored for the user, including soft
// deleted ones, newest first. Used by support tooling.
func (s *Storage) CustomerMappings(userID string) ([]CustomerMapping, error) {
	rows, err := s.db.Query(
		`SELECT user_id, customer_id, created_at, deleted_at
		   FROM stripe_customers WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("could not list customer mappings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var mappings []CustomerMapping
	for rows.Next() {
		var m CustomerMapping
		var deletedAt sql.NullTime
		if err := rows.Scan(&m.UserID, &m.CustomerID, &m.CreatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("could not scan customer mapping: %w", err)
		}
		if deletedAt.Valid {
			m.DeletedAt = &deletedAt.Time
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not list customer mappings: %w", err)
	}
	return mappings, nil
}
