package errors

import (
	"fmt"
	"net/http"
)

// The API errors definition. The messages are part of the client contract and
// must not change: the mobile client matches on them.
var (
	ErrMethodNotAllowed      = Error{Err: fmt.Errorf("Method not allowed"), HTTPstatus: http.StatusMethodNotAllowed}
	ErrMissingAuthHeader     = Error{Err: fmt.Errorf("Missing Authorization header"), HTTPstatus: http.StatusUnauthorized}
	ErrAuthenticationFailed  = Error{Err: fmt.Errorf("Failed to authenticate user"), HTTPstatus: http.StatusUnauthorized}
	ErrCustomerFetch         = Error{Err: fmt.Errorf("Failed to fetch customer information"), HTTPstatus: http.StatusInternalServerError}
	ErrCustomerMappingCreate = Error{Err: fmt.Errorf("Failed to create customer mapping"), HTTPstatus: http.StatusInternalServerError}
)
