package api

// API endpoints
const (
	pingEndpoint     = "/ping"
	metricsEndpoint  = "/metrics"
	checkoutEndpoint = "/checkout"
)

// Checkout session modes accepted by the API. Closed set; anything else is a
// validation failure.
const (
	checkoutModePayment      = "payment"
	checkoutModeSubscription = "subscription"
)
