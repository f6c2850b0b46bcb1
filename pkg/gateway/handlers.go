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
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/NVIDIA/catalog-gateway/pkg/bridge"
	"github.com/NVIDIA/catalog-gateway/pkg/serializer"
)

// field describes one body parameter. Fields are listed in engine argument
// order, which is not necessarily the order clients think of them in.
type field struct {
	name     string
	required bool
	fallback string
}

type bodySpec struct {
	missing string
	fields  []field
}

var (
	addUserBody = bodySpec{
		missing: "Missing user name in request body.",
		fields:  []field{{name: "name", required: true}},
	}

	addProductBody = bodySpec{
		missing: "Missing product name or price in request body.",
		fields: []field{
			{name: "name", required: true},
			{name: "category", fallback: "General"},
			{name: "price", required: true},
		},
	}

	addReviewBody = bodySpec{
		missing: "Missing userId, productId, or rating in request body.",
		fields: []field{
			{name: "userId", required: true},
			{name: "productId", required: true},
			{name: "rating", required: true},
			{name: "comment"},
		},
	}

	purchaseBody = bodySpec{
		missing: "Missing userId or productId",
		fields: []field{
			{name: "userId", required: true},
			{name: "productId", required: true},
		},
	}

	rateBody = bodySpec{
		missing: "Missing userId, productId, or rating",
		fields: []field{
			{name: "userId", required: true},
			{name: "productId", required: true},
			{name: "rating", required: true},
		},
	}
)

// errorPayload is the body of every validation failure.
type errorPayload struct {
	Error string `json:"error"`
}

// fixed serves operations that take no parameters.
func (g *Gateway) fixed(op bridge.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g.invoke(w, r, bridge.NewInvocation(op))
	}
}

// pathID serves operations keyed by one integer path segment. A segment that
// is not an unsigned integer does not match the route and yields 404.
func (g *Gateway) pathID(op bridge.Operation, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r.PathValue(name))
		if !ok {
			g.reject(w, op, http.StatusNotFound,
				fmt.Sprintf("Not found: %s must be an integer.", name))
			return
		}
		g.invoke(w, r, bridge.NewInvocation(op, id))
	}
}

// query serves operations taking one required query parameter.
func (g *Gateway) query(op bridge.Operation, name, missing string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if !q.Has(name) {
			g.reject(w, op, http.StatusBadRequest, missing)
			return
		}
		g.invoke(w, r, bridge.NewInvocation(op, q.Get(name)))
	}
}

// body serves operations taking a JSON object body.
func (g *Gateway) body(op bridge.Operation, spec bodySpec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := decodeObject(http.MaxBytesReader(w, r.Body, g.maxBodyBytes))
		if err != nil {
			status := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if stderrors.As(err, &tooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			g.reject(w, op, status,
				fmt.Sprintf("Invalid JSON input or processing error: %v", err))
			return
		}

		params, reason := spec.extract(doc)
		if reason != "" {
			g.reject(w, op, http.StatusBadRequest, reason)
			return
		}
		g.invoke(w, r, bridge.NewInvocation(op, params...))
	}
}

func (g *Gateway) reject(w http.ResponseWriter, op bridge.Operation, status int, msg string) {
	validationFailures.WithLabelValues(string(op)).Inc()
	slog.Debug("request rejected", "operation", op, "status", status, "reason", msg)
	serializer.RespondJSON(w, status, errorPayload{Error: msg})
}

// extract returns the body parameters in engine argument order, or the
// reason the body was rejected. A null value counts as missing.
func (s bodySpec) extract(doc map[string]any) ([]string, string) {
	params := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		v, ok := doc[f.name]
		if !ok || v == nil {
			if f.required {
				return nil, s.missing
			}
			params = append(params, f.fallback)
			continue
		}
		str, ok := coerce(v)
		if !ok {
			return nil, fmt.Sprintf("Field %q must be a string, number or boolean.", f.name)
		}
		params = append(params, str)
	}
	return params, ""
}

// decodeObject reads exactly one JSON object, keeping numbers as literals.
func decodeObject(body io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, stderrors.New("request body is empty")
		}
		return nil, err
	}
	if doc == nil {
		return nil, stderrors.New("request body must be a JSON object")
	}
	if _, err := dec.Token(); !stderrors.Is(err, io.EOF) {
		return nil, stderrors.New("unexpected data after JSON object")
	}
	return doc, nil
}

// coerce renders a scalar JSON value as an engine argument. Numbers keep
// their literal text.
func coerce(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

// parseID accepts unsigned decimal integers and returns their canonical
// form without leading zeros.
func parseID(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0", true
	}
	return s, true
}
