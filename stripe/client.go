package stripe

import (
	stripeapi "github.com/stripe/stripe-go/v81"
	stripecheckoutsession "github.com/stripe/stripe-go/v81/checkout/session"
	stripecustomer "github.com/stripe/stripe-go/v81/customer"
)

// Client wraps the Stripe API client.
type Client struct {
	config *Config
}

// NewClient creates a new Stripe client with the given configuration.
func NewClient(config *Config) *Client {
	stripeapi.Key = config.APIKey

	return &Client{
		config: config,
	}
}

// CreateCustomer creates a new Stripe customer for the given user. The user
// id travels as customer metadata so provider-side records can always be
// traced back to the local identity.
func (*Client) CreateCustomer(email, userID string) (string, error) {
	params := &stripeapi.CustomerParams{
		Email: stripeapi.String(email),
	}
	params.AddMetadata("userId", userID)

	customer, err := stripecustomer.New(params)
	if err != nil {
		return "", NewStripeError(CodeAPICallFailed, "failed to create customer", err)
	}
	return customer.ID, nil
}

// SessionParams holds the parameters for creating a checkout session.
type SessionParams struct {
	CustomerID string
	PriceID    string
	Mode       string
	SuccessURL string
	CancelURL  string
}

// Session is the subset of a Stripe checkout session the API returns to the
// client. Sessions are provider-owned and never persisted locally.
type Session struct {
	ID  string
	URL string
}

// CreateSession creates a new checkout session scoped to an existing
// customer: a single line item with quantity 1, card payments only.
// Overview of stripe checkout mechanics: https://docs.stripe.com/checkout/quickstart
// API description https://docs.stripe.com/api/checkout/sessions
func (*Client) CreateSession(params *SessionParams) (*Session, error) {
	checkoutParams := &stripeapi.CheckoutSessionParams{
		Customer:           stripeapi.String(params.CustomerID),
		PaymentMethodTypes: stripeapi.StringSlice([]string{"card"}),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				Price:    stripeapi.String(params.PriceID),
				Quantity: stripeapi.Int64(1),
			},
		},
		Mode:       stripeapi.String(params.Mode),
		SuccessURL: stripeapi.String(params.SuccessURL),
		CancelURL:  stripeapi.String(params.CancelURL),
	}

	session, err := stripecheckoutsession.New(checkoutParams)
	if err != nil {
		return nil, NewStripeError(CodeAPICallFailed, "failed to create checkout session", err)
	}

	return &Session{
		ID:  session.ID,
		URL: session.URL,
	}, nil
}
