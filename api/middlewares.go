package api

import (
	"net/http"
)

// corsMiddleware attaches the permissive cross-origin headers the mobile
// client relies on to every response, including errors, and answers CORS
// preflight with an empty 204. The allow-list is fixed to what the API
// actually serves, and the headers are present even on requests without an
// Origin header; both are part of the observed client contract.
func (*API) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			// 204 with no body and no Content-Type.
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
