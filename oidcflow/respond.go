package oidcflow

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Error codes returned in JSON bodies by the sign-in callback.
const (
	ErrorInvalidChallenge = "invalid_challenge"
	ErrorInvalidCallback  = "invalid_callback"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: code})
}

func redirectTemporary(w http.ResponseWriter, location string) {
	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusTemporaryRedirect)
}

func internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg(msg)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// requestOrigin is scheme://host of the request as seen by the client.
func requestOrigin(r *http.Request) string {
	return getScheme(r) + "://" + r.Host
}

// requestURL is the absolute URL of the request.
func requestURL(r *http.Request) string {
	return requestOrigin(r) + r.URL.RequestURI()
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return strings.ToLower(strings.TrimSpace(strings.Split(scheme, ",")[0]))
	}
	return "http"
}
