// Package gateway declares the HTTP routes of the catalog API and validates
// each request before handing it to the engine bridge.
//
// Every operation is reachable under both historical spellings, for example
// GET /get/products and GET /getProducts. Aliases are registered with the
// same handler value, so they cannot drift apart.
//
// Validation happens entirely here: a missing required field yields 400 with
// an {"error": "..."} body and the engine is never started. Path ids must be
// unsigned integers; anything else yields 404. Body values are coerced to
// strings, with JSON numbers keeping their literal text so a price of 9.99
// reaches the engine as "9.99".
//
// Usage:
//
//	g := gateway.New(b, gateway.WithVersion(version))
//	s := server.New(server.WithHandler(g.Handlers()))
package gateway
