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
	"mime"
	"net/http"
	"slices"
	"strings"
)

// DefaultAPIVersion is reported when the client does not ask for one.
const DefaultAPIVersion = "v1"

// apiMediaType is the vendor media type prefix; a versioned Accept entry
// looks like application/vnd.nvidia.catalog.v1+json.
const apiMediaType = "application/vnd.nvidia.catalog."

var apiVersions = []string{"v1"}

// negotiateAPIVersion returns the first supported version named in the
// Accept header, or DefaultAPIVersion.
func negotiateAPIVersion(r *http.Request) string {
	for entry := range strings.SplitSeq(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(entry))
		if err != nil {
			continue
		}
		rest, ok := strings.CutPrefix(mt, apiMediaType)
		if !ok {
			continue
		}
		if v, _, _ := strings.Cut(rest, "+"); slices.Contains(apiVersions, v) {
			return v
		}
	}
	return DefaultAPIVersion
}

func setAPIVersionHeader(w http.ResponseWriter, version string) {
	w.Header().Set("X-API-Version", version)
}
