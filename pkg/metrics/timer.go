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

// Package metrics defines the timer capability the clients report request
// durations through, with no-op, Prometheus and OpenTelemetry implementations.
package metrics

import "maps"

// Label names used by the clients.
const (
	LabelClientName    = "client_name"
	LabelBaseURL       = "base_url"
	LabelURL           = "url"
	LabelMethod        = "method"
	LabelStatus        = "status"
	LabelStatusCode    = "status_code"
	LabelStatusMessage = "status_message"
	LabelErrorCode     = "error_code"
	LabelErrorMessage  = "error_message"
	LabelOutcome       = "outcome"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeRetry   = "retry"
	OutcomeError   = "error"
)

// Labels is a set of metric label values.
type Labels map[string]string

// Merge returns a new set holding l overlaid with other.
func (l Labels) Merge(other Labels) Labels {
	out := make(Labels, len(l)+len(other))
	maps.Copy(out, l)
	maps.Copy(out, other)
	return out
}

// EndFunc stops a timer and records the observation with the result labels.
type EndFunc func(result Labels)

// Timer starts duration measurements.
type Timer interface {
	// StartTimer begins a measurement labelled with labels.
	StartTimer(labels Labels) EndFunc
}

// TimerFunc adapts a function to the Timer interface.
type TimerFunc func(labels Labels) EndFunc

// StartTimer implements Timer.
func (f TimerFunc) StartTimer(labels Labels) EndFunc {
	return f(labels)
}

// Noop is a Timer that records nothing.
type Noop struct{}

// StartTimer implements Timer.
func (Noop) StartTimer(Labels) EndFunc {
	return func(Labels) {}
}
