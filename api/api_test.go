package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/pulsegram/checkout-backend/auth"
	"github.com/pulsegram/checkout-backend/db"
	"github.com/pulsegram/checkout-backend/stripe"
)

const (
	testToken  = "valid-test-token"
	testUserID = "user-42"
	testEmail  = "user@test.com"
)

// fakePayments implements stripe.Payments and records every call.
type fakePayments struct {
	mu          sync.Mutex
	customers   int
	sessions    []*stripe.SessionParams
	customerErr error
	sessionErr  error
}

func (f *fakePayments) CreateCustomer(_, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.customerErr != nil {
		return "", f.customerErr
	}
	f.customers++
	return fmt.Sprintf("cus_fake%d", f.customers), nil
}

func (f *fakePayments) CreateSession(params *stripe.SessionParams) (*stripe.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	f.sessions = append(f.sessions, params)
	return &stripe.Session{
		ID:  "cs_test_123",
		URL: "https://checkout.stripe.com/c/pay/cs_test_123",
	}, nil
}

func (f *fakePayments) createdCustomers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.customers
}

func (f *fakePayments) createdSessions() []*stripe.SessionParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*stripe.SessionParams{}, f.sessions...)
}

// fakeRepo implements stripe.Repository in memory. notFoundOnce makes the
// first lookup miss even when a mapping is present, which simulates another
// request winning the read-then-insert race in between.
type fakeRepo struct {
	mu           sync.Mutex
	mappings     map[string]string
	lookupErr    error
	insertErr    error
	notFoundOnce bool
}

func (f *fakeRepo) CustomerID(userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return "", f.lookupErr
	}
	if f.notFoundOnce {
		f.notFoundOnce = false
		return "", db.ErrNotFound
	}
	id, ok := f.mappings[userID]
	if !ok {
		return "", db.ErrNotFound
	}
	return id, nil
}

func (f *fakeRepo) SetCustomerMapping(userID, customerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.mappings[userID]; ok {
		return db.ErrAlreadyExists
	}
	f.mappings[userID] = customerID
	return nil
}

// newTestIdentityServer fakes the identity provider: it accepts exactly
// testToken and resolves it to the test user.
func newTestIdentityServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"invalid JWT"}`)
			return
		}
		fmt.Fprintf(w, `{"id":%q,"email":%q}`, testUserID, testEmail)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newTestAPI builds the full router wired to fakes and a fake identity
// provider, so tests exercise the same middleware chain as production.
func newTestAPI(t *testing.T) (http.Handler, *fakePayments, *fakeRepo) {
	t.Helper()
	identity := newTestIdentityServer(t)
	payments := &fakePayments{}
	repo := &fakeRepo{mappings: map[string]string{}}
	a := New(&Config{
		Host:   "127.0.0.1",
		Port:   0,
		Auth:   auth.New(identity.URL, "test-api-key"),
		Stripe: stripe.NewService(payments, repo),
	})
	return a.initRouter(), payments, repo
}

// doRequest performs a request against the handler. authHeader is the raw
// Authorization header value (empty means no header); body may be a string
// (sent verbatim) or any JSON-marshalable value.
func doRequest(t *testing.T, h http.Handler, method, path, authHeader string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("could not marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// validCheckoutBody returns a fresh valid checkout payload.
func validCheckoutBody() map[string]any {
	return map[string]any{
		"price_id":    "price_1R0PyiTest",
		"success_url": "https://app.example.com/success",
		"cancel_url":  "https://app.example.com/cancel",
		"mode":        "subscription",
	}
}

// errorMessage decodes the {"error": ...} body of an error response.
func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("could not decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}
