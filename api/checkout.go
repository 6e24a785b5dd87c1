package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pulsegram/checkout-backend/errors"
	"github.com/pulsegram/checkout-backend/stripe"
)

// CheckoutResponse is the success body of the checkout endpoint: the session
// locator the client redirects the end user to.
type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// createCheckoutSessionHandler issues a Stripe checkout session for the
// authenticated caller. The order of checks is part of the contract: body
// validation runs before authentication, and nothing touches the store or
// the provider once a step has failed.
func (a *API) createCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		// An unreadable body is not a validation failure: it surfaces like
		// any other uncaught error, raw message and all.
		checkoutFailures.WithLabelValues("body").Inc()
		errors.Internal(err).Write(w)
		return
	}

	request, verr := validateCheckoutRequest(body)
	if verr != nil {
		checkoutFailures.WithLabelValues("validation").Inc()
		verr.Write(w)
		return
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		checkoutFailures.WithLabelValues("auth").Inc()
		errors.ErrMissingAuthHeader.Write(w)
		return
	}
	// Strip the literal "Bearer " prefix. A header without it is passed to
	// the identity provider verbatim; the provider is the one that rejects
	// garbage tokens.
	token := strings.TrimPrefix(authHeader, "Bearer ")

	user, err := a.auth.User(r.Context(), token)
	if err != nil || user == nil {
		checkoutFailures.WithLabelValues("auth").Inc()
		errors.ErrAuthenticationFailed.WithCause(err).Write(w)
		return
	}

	session, err := a.stripe.CreateCheckoutSession(&stripe.CheckoutParams{
		UserID:     user.ID,
		Email:      user.Email,
		PriceID:    request.PriceID,
		Mode:       request.Mode,
		SuccessURL: request.SuccessURL,
		CancelURL:  request.CancelURL,
	})
	if err != nil {
		a.writeCheckoutError(w, err)
		return
	}

	checkoutSessionsCreated.Inc()
	httpWriteJSON(w, &CheckoutResponse{
		SessionID: session.ID,
		URL:       session.URL,
	})
}

// writeCheckoutError maps checkout service failures to API responses. Store
// failures get fixed generic messages with the cause kept server-side;
// anything else (notably provider failures) echoes the raw error message,
// which is what the client has always seen.
func (*API) writeCheckoutError(w http.ResponseWriter, err error) {
	if stripeErr, ok := err.(*stripe.StripeError); ok {
		switch stripeErr.Code {
		case stripe.CodeCustomerLookup:
			checkoutFailures.WithLabelValues("store").Inc()
			errors.ErrCustomerFetch.WithCause(err).Write(w)
			return
		case stripe.CodeMappingWrite:
			checkoutFailures.WithLabelValues("store").Inc()
			errors.ErrCustomerMappingCreate.WithCause(err).Write(w)
			return
		}
	}
	checkoutFailures.WithLabelValues("provider").Inc()
	errors.Internal(err).Write(w)
}
