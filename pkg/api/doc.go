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

// Package api wires the catalog gateway: configuration feeds the engine
// locator and bridge, the bridge backs the gateway routes, and the routes are
// served by pkg/server.
//
// Usage:
//
//	cfg, err := config.Load(ctx, "/etc/catalog/config.yaml")
//	if err != nil {
//	    return err
//	}
//	return api.Serve(ctx, cfg)
//
// # Endpoints
//
// Catalog operations (rate limited), each backed by one engine invocation:
//
//	GET    /get/products, /getProducts
//	GET    /get/users, /getUsers
//	GET    /get/reviews/{productId}, /getReviews/{productId}
//	POST   /add/user, /addUser
//	POST   /add/product, /addProduct
//	POST   /add/review, /addReview
//	DELETE /delete/user/{userId}, /deleteUser/{userId}
//	DELETE /delete/product/{productId}, /deleteProduct/{productId}
//	POST   /purchase
//	POST   /rate
//	GET    /recommend?userId=
//
// System endpoints (no rate limiting):
//
//	GET /         - index with the route table
//	GET /health   - liveness
//	GET /ready    - readiness, 503 while the engine cannot be located
//	GET /metrics  - Prometheus metrics
package api
