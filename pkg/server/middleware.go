// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/catalog-gateway/pkg/errors"
)

const (
	corsAllowMethods = "GET, POST, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, X-Request-Id"
	corsMaxAge       = "600"
)

type middleware func(http.HandlerFunc) http.HandlerFunc

// withMiddleware wraps handler in the per-route chain. The first entry is
// outermost. Recovery sits before the limiter so a panicking request still
// spends its token.
func (s *Server) withMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	chain := []middleware{
		s.metricsMiddleware,
		s.versionMiddleware,
		s.requestIDMiddleware,
		s.panicRecoveryMiddleware,
		s.rateLimitMiddleware,
		s.loggingMiddleware,
	}
	for _, mw := range slices.Backward(chain) {
		handler = mw(handler)
	}
	return handler
}

// versionMiddleware negotiates the API version and echoes it in X-API-Version.
func (s *Server) versionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := negotiateAPIVersion(r)
		setAPIVersionHeader(w, version)
		next(w, r.WithContext(context.WithValue(r.Context(), contextKeyAPIVersion, version)))
	}
}

// requestIDMiddleware keeps a caller's X-Request-Id when it is a UUID and
// assigns a fresh one otherwise.
func (s *Server) requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next(w, r.WithContext(context.WithValue(r.Context(), contextKeyRequestID, id)))
	}
}

func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	limit := strconv.Itoa(int(s.config.RateLimit))
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		if !s.rateLimiter.Allow() {
			rateLimitRejects.Inc()
			h.Set("Retry-After", "1")
			WriteError(w, r, http.StatusTooManyRequests, errors.ErrCodeRateLimitExceeded,
				"Rate limit exceeded", true, map[string]any{
					"limit": s.config.RateLimit,
					"burst": s.config.RateLimitBurst,
				})
			return
		}

		h.Set("X-RateLimit-Limit", limit)
		h.Set("X-RateLimit-Remaining", strconv.Itoa(int(s.rateLimiter.Tokens())))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))
		next(w, r)
	}
}

// panicRecoveryMiddleware turns a handler panic into a 500 error body.
func (s *Server) panicRecoveryMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			panicRecoveries.Inc()
			slog.ErrorContext(r.Context(), "panic recovered",
				"error", fmt.Sprint(v),
				"requestID", RequestIDFrom(r.Context()),
				"method", r.Method,
				"path", r.URL.Path)
			WriteError(w, r, http.StatusInternalServerError, errors.ErrCodeInternal,
				"Internal server error", true, nil)
		}()
		next(w, r)
	}
}

// loggingMiddleware emits one line per completed request.
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := recordStatus(w)
		next(rec, r)

		slog.InfoContext(r.Context(), "request completed",
			"requestID", RequestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.Status(),
			"bytes", rec.Bytes(),
			"duration", time.Since(start).String())
	}
}

// corsMiddleware answers preflight requests and sets CORS headers for
// allowed origins. It wraps the whole mux so OPTIONS requests never reach
// method-restricted patterns.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	if len(s.config.CORSOrigins) == 0 {
		return next
	}
	allowAny := slices.Contains(s.config.CORSOrigins, "*")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		allowed := allowAny || slices.ContainsFunc(s.config.CORSOrigins, func(o string) bool {
			return strings.EqualFold(o, origin)
		})
		if allowed {
			h := w.Header()
			if allowAny {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Expose-Headers", "X-Request-Id, X-API-Version")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if allowed {
				w.Header().Set("Access-Control-Max-Age", corsMaxAge)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
