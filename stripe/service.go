// Package stripe provides integration with the Stripe payment service,
// handling customer provisioning and checkout session creation.
package stripe

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/pulsegram/checkout-backend/db"
)

// Repository is the storage the checkout service needs: the durable mapping
// between local users and Stripe customers.
type Repository interface {
	// CustomerID returns the customer id of the active mapping for the
	// user, or db.ErrNotFound when there is none.
	CustomerID(userID string) (string, error)
	// SetCustomerMapping stores a new mapping. It returns
	// db.ErrAlreadyExists when an active mapping is already present.
	SetCustomerMapping(userID, customerID string) error
}

// Payments is the subset of the Stripe API the checkout service uses.
// *Client implements it; tests substitute fakes.
type Payments interface {
	CreateCustomer(email, userID string) (string, error)
	CreateSession(params *SessionParams) (*Session, error)
}

// Service provides the main business logic for checkout operations.
type Service struct {
	payments Payments
	repo     Repository
}

// NewService creates a new Stripe checkout service.
func NewService(payments Payments, repo Repository) *Service {
	return &Service{
		payments: payments,
		repo:     repo,
	}
}

// CheckoutParams holds everything needed to open a checkout session for an
// authenticated user.
type CheckoutParams struct {
	UserID     string
	Email      string
	PriceID    string
	Mode       string
	SuccessURL string
	CancelURL  string
}

// CreateCheckoutSession resolves the Stripe customer for the user, creating
// one on the user's first checkout, and opens a checkout session for it.
// Exactly one session is created per successful call; there is no idempotency
// key, so a client retry after a timeout may produce a duplicate session.
func (s *Service) CreateCheckoutSession(params *CheckoutParams) (*Session, error) {
	customerID, err := s.customerForUser(params.UserID, params.Email)
	if err != nil {
		return nil, err
	}

	session, err := s.payments.CreateSession(&SessionParams{
		CustomerID: customerID,
		PriceID:    params.PriceID,
		Mode:       params.Mode,
		SuccessURL: params.SuccessURL,
		CancelURL:  params.CancelURL,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session", session.ID).
		Str("customer", customerID).
		Msg("created checkout session")
	return session, nil
}

// customerForUser returns the Stripe customer id for the user, provisioning
// customer and mapping lazily on first use. The read-then-insert race between
// concurrent first checkouts is settled by the store's uniqueness guarantee:
// the losing insert reports db.ErrAlreadyExists and the winner's customer is
// reused.
func (s *Service) customerForUser(userID, email string) (string, error) {
	customerID, err := s.repo.CustomerID(userID)
	if err == nil {
		return customerID, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return "", NewStripeError(CodeCustomerLookup, "failed to fetch customer mapping", err)
	}

	newID, err := s.payments.CreateCustomer(email, userID)
	if err != nil {
		return "", err
	}

	if err := s.repo.SetCustomerMapping(userID, newID); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			winner, rerr := s.repo.CustomerID(userID)
			if rerr == nil {
				log.Warn().
					Str("user", userID).
					Str("customer", newID).
					Str("winner", winner).
					Msg("lost customer mapping race, orphaned stripe customer")
				return winner, nil
			}
			err = rerr
		}
		// The remote customer exists but the mapping does not: an accepted
		// inconsistency window. Log the orphan so it can be reconciled.
		log.Error().
			Err(err).
			Str("user", userID).
			Str("customer", newID).
			Msg("customer mapping write failed, stripe customer orphaned")
		return "", NewStripeError(CodeMappingWrite, "failed to store customer mapping", err)
	}

	return newID, nil
}
