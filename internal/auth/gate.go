package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

const (
	// HeaderAccessToken is the last-resort token source after body and query.
	HeaderAccessToken = "x-access-token"
	// TokenField names both the body field and the query parameter.
	TokenField = "token"

	MsgTokenRequired = "A token is required for authentication"
	MsgInvalidToken  = "Invalid Token"

	maxBodyPeek = 1 << 20
)

// Verifier is the part of Codec the gate depends on.
type Verifier interface {
	Verify(token string) (Principal, error)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the Principal attached by Gate.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Gate returns a middleware that admits only requests carrying a valid token.
// Missing token -> 403, any verification failure -> 401. It never consults
// the user store.
func Gate(v Verifier, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				writeText(w, http.StatusForbidden, MsgTokenRequired)
				return
			}
			p, err := v.Verify(token)
			if err != nil {
				logger.Debugw("access token rejected",
					"reason", failureKind(err),
					"path", r.URL.Path,
					"err", err,
				)
				writeText(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// tokenFromRequest checks body field, query parameter, then header.
func tokenFromRequest(r *http.Request) string {
	if t := tokenFromBody(r); t != "" {
		return t
	}
	if t := r.URL.Query().Get(TokenField); t != "" {
		return t
	}
	return r.Header.Get(HeaderAccessToken)
}

type replayBody struct {
	io.Reader
	io.Closer
}

// tokenFromBody peeks at JSON or urlencoded bodies and puts the consumed
// bytes back so downstream handlers still see the full body.
func tokenFromBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	if mt != "application/json" && mt != "application/x-www-form-urlencoded" {
		return ""
	}

	orig := r.Body
	peek, err := io.ReadAll(io.LimitReader(orig, maxBodyPeek))
	r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(peek), orig), Closer: orig}
	if err != nil || len(peek) == 0 {
		return ""
	}

	if mt == "application/json" {
		var payload struct {
			Token any `json:"token"`
		}
		if err := json.Unmarshal(peek, &payload); err != nil {
			return ""
		}
		s, _ := payload.Token.(string)
		return s
	}
	vals, err := url.ParseQuery(string(peek))
	if err != nil {
		return ""
	}
	return vals.Get(TokenField)
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
