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
	"strings"
	"testing"
)

func BenchmarkClassifyOutput(b *testing.B) {
	outputs := []string{
		`[{"id":1,"name":"Widget","price":9.99}]`,
		`{"status":"ok"}`,
		"not json",
		"",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = classifyOutput(outputs[i%len(outputs)], "")
	}
}

func BenchmarkClassifyOutputLarge(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < 5000; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"id":1,"name":"Widget","category":"General","price":9.99}`)
	}
	sb.WriteString("]")
	out := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = classifyOutput(out, "")
	}
}

func BenchmarkNormalize(b *testing.B) {
	results := []Result{
		{Kind: KindSuccess, Payload: map[string]any{"ok": true}},
		{Kind: KindTimeout},
		{Kind: KindMalformedOutput, Stdout: "oops"},
		{Kind: KindProcessError, Stderr: "boom"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Normalize(results[i%len(results)], "engine")
	}
}
