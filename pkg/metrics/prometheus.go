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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// prometheusLabels is the fixed label set of the histogram. Missing values
// are recorded as empty strings.
var prometheusLabels = []string{
	LabelClientName,
	LabelBaseURL,
	LabelURL,
	LabelMethod,
	LabelStatusCode,
	LabelErrorCode,
	LabelOutcome,
}

// PrometheusOpts configures a Prometheus timer.
type PrometheusOpts struct {
	Namespace string
	Name      string
	Help      string
	Buckets   []float64
}

// Prometheus is a Timer backed by a HistogramVec observing seconds.
type Prometheus struct {
	histogram *prometheus.HistogramVec
}

// NewPrometheus registers a histogram with reg. A nil reg leaves the
// histogram unregistered.
func NewPrometheus(reg prometheus.Registerer, opts PrometheusOpts) *Prometheus {
	if opts.Buckets == nil {
		opts.Buckets = prometheus.DefBuckets
	}
	return &Prometheus{
		histogram: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: opts.Namespace,
				Name:      opts.Name,
				Help:      opts.Help,
				Buckets:   opts.Buckets,
			},
			prometheusLabels,
		),
	}
}

// Collector exposes the underlying histogram.
func (p *Prometheus) Collector() *prometheus.HistogramVec {
	return p.histogram
}

// StartTimer implements Timer.
func (p *Prometheus) StartTimer(labels Labels) EndFunc {
	start := time.Now()
	return func(result Labels) {
		all := labels.Merge(result)
		values := make([]string, len(prometheusLabels))
		for i, name := range prometheusLabels {
			values[i] = all[name]
		}
		p.histogram.WithLabelValues(values...).Observe(time.Since(start).Seconds())
	}
}
