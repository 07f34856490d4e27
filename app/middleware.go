package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const redactedBody = "[redacted]"

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// logRequest logs method, path and body. Bodies carrying a password field are replaced entirely.
func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			var err error
			body, err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
			if err != nil {
				app.badRequestErrorResponse(w, r, err)
				return
			}
			r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
		}

		app.logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("body", logBody(body)),
		)

		next.ServeHTTP(w, r)
	})
}

func logBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	// request bodies are decoded case-insensitively, so "Password" counts too
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		for key := range fields {
			if strings.EqualFold(key, "password") {
				return redactedBody
			}
		}
	}

	return string(body)
}

// extractToken stores the token of an "Authorization: Bearer <token>" header in the request
// context. A missing or differently schemed header is not an error.
func (app *application) extractToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		const prefix = "bearer "

		header := r.Header.Get("Authorization")
		if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
			r = app.contextSetToken(r, strings.TrimSpace(header[len(prefix):]))
		}

		next.ServeHTTP(w, r)
	})
}

// requireUser resolves the request token to a user and rejects the request when that fails.
func (app *application) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := app.userService.Authenticate(r.Context(), app.contextGetToken(r))
		if err != nil {
			app.handleError(w, r, err)
			return
		}

		next.ServeHTTP(w, app.contextSetUser(r, user))
	}
}
