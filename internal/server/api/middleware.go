package api

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/ratelimit"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

// requestLogger logs one line per request once the handler returns.
func requestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
				"remote", r.RemoteAddr,
			}
			if status >= http.StatusInternalServerError {
				log.Error(r.Context(), "http request", args...)
				return
			}
			log.Info(r.Context(), "http request", args...)
		})
	}
}

// cors allows any origin and answers preflight requests directly.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Add("Vary", "Origin")
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller for rate limiting. RealIP may already have
// replaced RemoteAddr with a bare address.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Admitter is the rate limit check used by the router.
type Admitter interface {
	Admit(ctx context.Context, client, route string) (ratelimit.Result, error)
}

// limit charges every request to route against the caller's budget before
// any other work, authentication included, is done.
func limit(adm Admitter, route string, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adm == nil {
				next.ServeHTTP(w, r)
				return
			}
			res, err := adm.Admit(r.Context(), clientKey(r), route)
			if res.Limit > 0 {
				h := w.Header()
				h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
				h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
				h.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset.Unix(), 10))
			}
			if err != nil {
				if !errors.Is(err, common.ErrRateLimited) {
					log.Error(r.Context(), "rate limit check failed", "route", route, "error", err)
					next.ServeHTTP(w, r)
					return
				}
				retry := int(math.Ceil(time.Until(res.Reset).Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				log.Warn(r.Context(), "rate limit exceeded", "route", route, "client", clientKey(r))
				writeError(w, http.StatusTooManyRequests, detailFromRateLimit(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// detailFromRateLimit turns "rate limited: 20/minute" into the wire detail.
func detailFromRateLimit(err error) string {
	if rule, ok := strings.CutPrefix(err.Error(), common.ErrRateLimited.Error()+": "); ok && rule != "" {
		return msgRateLimited + ": " + rule
	}
	return msgRateLimited
}

// TokenAuthenticator resolves a bearer token to a user.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// authenticate requires a valid bearer token and stores the caller's
// identity in the request context.
func authenticate(authn TokenAuthenticator, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := jwtauth.TokenFromHeader(r)
			if token == "" {
				unauthorized(w, msgBadToken)
				return
			}
			u, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, common.ErrInvalidCredentials) {
					log.Warn(r.Context(), "bearer token rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
					unauthorized(w, msgBadToken)
					return
				}
				log.Error(r.Context(), "authenticate", "error", err)
				status, detail := statusFromError(err, msgBadToken)
				writeError(w, status, detail)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), u)))
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, detail)
}
