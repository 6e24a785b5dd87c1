package api

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pulsegram/checkout-backend/errors"
)

// checkoutRequest is the validated checkout payload.
type checkoutRequest struct {
	PriceID    string
	SuccessURL string
	CancelURL  string
	Mode       string
}

// paramRule is one entry of the expected-parameter table. A rule either
// requires a JSON string or restricts the value to a closed set.
type paramRule struct {
	name    string
	allowed []string // nil means "any string"
}

// checkoutParamRules is scanned in declaration order and the first failing
// rule wins, which keeps the error message for any given payload
// deterministic. Clients match on these messages; do not reorder.
var checkoutParamRules = []paramRule{
	{name: "price_id"},
	{name: "success_url"},
	{name: "cancel_url"},
	{name: "mode", allowed: []string{checkoutModePayment, checkoutModeSubscription}},
}

// validateCheckoutRequest checks the decoded body against the parameter table
// and returns the validated request, or the 400 error to write back.
func validateCheckoutRequest(body map[string]json.RawMessage) (*checkoutRequest, *errors.Error) {
	values := map[string]string{}
	for _, rule := range checkoutParamRules {
		raw, present := body[rule.name]
		if present && string(raw) == "null" {
			// JSON null counts as absent, same as a missing key.
			present = false
		}

		if rule.allowed == nil {
			if !present {
				verr := errors.InvalidParameter("Missing required parameter %s", rule.name)
				return nil, &verr
			}
			var value string
			if err := json.Unmarshal(raw, &value); err != nil {
				verr := errors.InvalidParameter("Expected parameter %s to be a string got %s",
					rule.name, compactJSON(raw))
				return nil, &verr
			}
			values[rule.name] = value
			continue
		}

		// Enumerated parameter: absent, non-string and out-of-set values all
		// fail the same way, with a message listing the accepted set.
		var value string
		if !present || json.Unmarshal(raw, &value) != nil || !contains(rule.allowed, value) {
			verr := errors.InvalidParameter("Expected parameter %s to be one of %s",
				rule.name, strings.Join(rule.allowed, ", "))
			return nil, &verr
		}
		values[rule.name] = value
	}

	return &checkoutRequest{
		PriceID:    values["price_id"],
		SuccessURL: values["success_url"],
		CancelURL:  values["cancel_url"],
		Mode:       values["mode"],
	}, nil
}

// compactJSON renders the offending raw value the way it would be serialized,
// for inclusion in validation error messages.
func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func contains(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}
