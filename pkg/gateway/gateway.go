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

package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"sort"

	"github.com/NVIDIA/catalog-gateway/pkg/bridge"
	"github.com/NVIDIA/catalog-gateway/pkg/defaults"
	"github.com/NVIDIA/catalog-gateway/pkg/serializer"
)

// IndexMessage is returned by the index route.
const IndexMessage = "E-Commerce Recommendation System API connected with the recommendation engine."

// Invoker runs one engine invocation and returns the normalized response.
// *bridge.Bridge satisfies it.
type Invoker interface {
	Do(ctx context.Context, inv bridge.Invocation) bridge.Response
}

// Route is one externally visible operation. Every path in Paths is served
// by the same Handler value.
type Route struct {
	Operation bridge.Operation
	Method    string
	Paths     []string
	Handler   http.HandlerFunc
}

// Patterns returns the ServeMux patterns for the route, one per alias.
func (r Route) Patterns() []string {
	patterns := make([]string, 0, len(r.Paths))
	for _, p := range r.Paths {
		patterns = append(patterns, r.Method+" "+p)
	}
	return patterns
}

// Gateway validates inbound requests and delegates them to an Invoker.
type Gateway struct {
	invoker      Invoker
	name         string
	version      string
	maxBodyBytes int64
	routes       []Route
}

// Option is a functional option for configuring Gateway instances.
type Option func(*Gateway)

// WithName sets the service name reported by the index route.
func WithName(name string) Option {
	return func(g *Gateway) {
		g.name = name
	}
}

// WithVersion sets the version reported by the index route.
func WithVersion(version string) Option {
	return func(g *Gateway) {
		g.version = version
	}
}

// WithMaxBodyBytes caps inbound JSON request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(g *Gateway) {
		if n > 0 {
			g.maxBodyBytes = n
		}
	}
}

// New creates a Gateway whose routes delegate to invoker.
func New(invoker Invoker, opts ...Option) *Gateway {
	g := &Gateway{
		invoker:      invoker,
		name:         "catalog-gateway",
		version:      "dev",
		maxBodyBytes: defaults.ServerMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.routes = g.buildRoutes()
	return g
}

// Routes returns the operation routes in registration order.
func (g *Gateway) Routes() []Route {
	out := make([]Route, len(g.routes))
	copy(out, g.routes)
	return out
}

// Handlers returns the routes keyed by ServeMux pattern, including the
// index route. Aliases map to the same handler.
func (g *Gateway) Handlers() map[string]http.HandlerFunc {
	handlers := map[string]http.HandlerFunc{
		"GET /{$}": g.handleIndex,
	}
	for _, rt := range g.routes {
		for _, p := range rt.Patterns() {
			handlers[p] = rt.Handler
		}
	}
	return handlers
}

func (g *Gateway) buildRoutes() []Route {
	return []Route{
		{
			Operation: bridge.OpGetProducts,
			Method:    http.MethodGet,
			Paths:     []string{"/get/products", "/getProducts"},
			Handler:   g.fixed(bridge.OpGetProducts),
		},
		{
			Operation: bridge.OpGetUsers,
			Method:    http.MethodGet,
			Paths:     []string{"/get/users", "/getUsers"},
			Handler:   g.fixed(bridge.OpGetUsers),
		},
		{
			Operation: bridge.OpGetReviews,
			Method:    http.MethodGet,
			Paths:     []string{"/get/reviews/{productId}", "/getReviews/{productId}"},
			Handler:   g.pathID(bridge.OpGetReviews, "productId"),
		},
		{
			Operation: bridge.OpAddUser,
			Method:    http.MethodPost,
			Paths:     []string{"/add/user", "/addUser"},
			Handler:   g.body(bridge.OpAddUser, addUserBody),
		},
		{
			Operation: bridge.OpAddProduct,
			Method:    http.MethodPost,
			Paths:     []string{"/add/product", "/addProduct"},
			Handler:   g.body(bridge.OpAddProduct, addProductBody),
		},
		{
			Operation: bridge.OpAddReview,
			Method:    http.MethodPost,
			Paths:     []string{"/add/review", "/addReview"},
			Handler:   g.body(bridge.OpAddReview, addReviewBody),
		},
		{
			Operation: bridge.OpDeleteUser,
			Method:    http.MethodDelete,
			Paths:     []string{"/delete/user/{userId}", "/deleteUser/{userId}"},
			Handler:   g.pathID(bridge.OpDeleteUser, "userId"),
		},
		{
			Operation: bridge.OpDeleteProduct,
			Method:    http.MethodDelete,
			Paths:     []string{"/delete/product/{productId}", "/deleteProduct/{productId}"},
			Handler:   g.pathID(bridge.OpDeleteProduct, "productId"),
		},
		{
			Operation: bridge.OpPurchase,
			Method:    http.MethodPost,
			Paths:     []string{"/purchase"},
			Handler:   g.body(bridge.OpPurchase, purchaseBody),
		},
		{
			Operation: bridge.OpRate,
			Method:    http.MethodPost,
			Paths:     []string{"/rate"},
			Handler:   g.body(bridge.OpRate, rateBody),
		},
		{
			Operation: bridge.OpRecommend,
			Method:    http.MethodGet,
			Paths:     []string{"/recommend"},
			Handler:   g.query(bridge.OpRecommend, "userId", "Missing userId"),
		},
	}
}

// indexResponse is the static payload served at GET /.
type indexResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Routes  []string `json:"routes"`
}

func (g *Gateway) handleIndex(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handling index route",
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)

	var routes []string
	for _, rt := range g.routes {
		routes = append(routes, rt.Patterns()...)
	}
	sort.Strings(routes)

	serializer.RespondJSON(w, http.StatusOK, indexResponse{
		Status:  "API running",
		Message: IndexMessage,
		Name:    g.name,
		Version: g.version,
		Routes:  routes,
	})
}

// invoke delegates inv and writes the normalized response.
func (g *Gateway) invoke(w http.ResponseWriter, r *http.Request, inv bridge.Invocation) {
	resp := g.invoker.Do(r.Context(), inv)
	serializer.RespondJSON(w, resp.Status, resp.Payload)
}
