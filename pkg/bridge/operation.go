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

package bridge

import (
	"fmt"
	"slices"
	"sort"
)

// Operation is a logical engine action. The set is closed; every value maps
// to exactly one argument template in the operation table.
type Operation string

const (
	OpGetProducts   Operation = "get-products"
	OpGetUsers      Operation = "get-users"
	OpGetReviews    Operation = "get-reviews"
	OpAddUser       Operation = "add-user"
	OpAddProduct    Operation = "add-product"
	OpAddReview     Operation = "add-review"
	OpDeleteUser    Operation = "delete-user"
	OpDeleteProduct Operation = "delete-product"
	OpPurchase      Operation = "purchase"
	OpRate          Operation = "rate"
	OpRecommend     Operation = "recommend"
)

// Template describes how an operation is rendered on the engine command line:
// the fixed verb tokens followed by the named parameters, in this order.
// The order is part of the engine contract.
type Template struct {
	Verb   []string
	Params []string
}

var operations = map[Operation]Template{
	OpGetProducts:   {Verb: []string{"--get", "products"}},
	OpGetUsers:      {Verb: []string{"--get", "users"}},
	OpGetReviews:    {Verb: []string{"--get", "reviews"}, Params: []string{"productId"}},
	OpAddUser:       {Verb: []string{"--add-user"}, Params: []string{"name"}},
	OpAddProduct:    {Verb: []string{"--add-product"}, Params: []string{"name", "category", "price"}},
	OpAddReview:     {Verb: []string{"--add-review"}, Params: []string{"userId", "productId", "rating", "comment"}},
	OpDeleteUser:    {Verb: []string{"--delete-user"}, Params: []string{"userId"}},
	OpDeleteProduct: {Verb: []string{"--delete-product"}, Params: []string{"productId"}},
	OpPurchase:      {Verb: []string{"--purchase"}, Params: []string{"userId", "productId"}},
	OpRate:          {Verb: []string{"--rate"}, Params: []string{"userId", "productId", "rating"}},
	OpRecommend:     {Verb: []string{"--recommend"}, Params: []string{"userId"}},
}

// Lookup returns the template for op.
func Lookup(op Operation) (Template, bool) {
	t, ok := operations[op]
	if !ok {
		return Template{}, false
	}
	return Template{Verb: slices.Clone(t.Verb), Params: slices.Clone(t.Params)}, true
}

// Operations returns all known operations sorted by name.
func Operations() []Operation {
	ops := make([]Operation, 0, len(operations))
	for op := range operations {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// Invocation is one request for the engine: an operation plus its already
// validated, string-typed parameters in template order.
type Invocation struct {
	Operation Operation
	Params    []string
}

// NewInvocation creates an Invocation.
func NewInvocation(op Operation, params ...string) Invocation {
	return Invocation{Operation: op, Params: params}
}

// Args renders the engine argument vector (without the executable itself).
func (inv Invocation) Args() ([]string, error) {
	t, ok := operations[inv.Operation]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", inv.Operation)
	}
	if len(inv.Params) != len(t.Params) {
		return nil, fmt.Errorf("operation %q expects %d parameters %v, got %d",
			inv.Operation, len(t.Params), t.Params, len(inv.Params))
	}
	args := make([]string, 0, len(t.Verb)+len(inv.Params))
	args = append(args, t.Verb...)
	args = append(args, inv.Params...)
	return args, nil
}
