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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	engineInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_engine_invocations_total",
			Help: "Total number of engine invocations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	engineInvocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_engine_invocation_duration_seconds",
			Help:    "Engine invocation latency in seconds, including process start",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	engineInvocationsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_engine_invocations_in_flight",
			Help: "Current number of running engine processes",
		},
	)

	engineOutputTruncations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_engine_output_truncations_total",
			Help: "Total number of engine output streams truncated at the capture limit",
		},
		[]string{"stream"},
	)
)
