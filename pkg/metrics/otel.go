// Copyright 2025 Tom Barlow
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

package metrics

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTel is a Timer backed by an OpenTelemetry histogram observing seconds.
// Every start and result label becomes an attribute.
type OTel struct {
	histogram metric.Float64Histogram
}

// NewOTel creates a histogram instrument named name on meter.
func NewOTel(meter metric.Meter, name, description string) (*OTel, error) {
	h, err := meter.Float64Histogram(
		name,
		metric.WithDescription(description),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &OTel{histogram: h}, nil
}

// StartTimer implements Timer.
func (o *OTel) StartTimer(labels Labels) EndFunc {
	start := time.Now()
	return func(result Labels) {
		all := labels.Merge(result)
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		attrs := make([]attribute.KeyValue, 0, len(keys))
		for _, k := range keys {
			attrs = append(attrs, attribute.String(k, all[k]))
		}
		o.histogram.Record(context.Background(), time.Since(start).Seconds(), metric.WithAttributes(attrs...))
	}
}
