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

package client

import (
	"strconv"

	"github.com/tombee/formclient/pkg/errors"
	"github.com/tombee/formclient/pkg/metrics"
)

// baseLabels are the labels every timer is started with. url is the
// template, not the compiled path, to keep cardinality bounded.
func (c *Client) baseLabels(method, urlTemplate string) metrics.Labels {
	return metrics.Labels{
		metrics.LabelClientName: c.name,
		metrics.LabelBaseURL:    c.identity.ServiceURL,
		metrics.LabelURL:        urlTemplate,
		metrics.LabelMethod:     method,
	}
}

// resultLabels are the labels a timer is ended with.
func resultLabels(status int, statusMessage string, rerr *errors.RequestError, outcome string) metrics.Labels {
	labels := metrics.Labels{metrics.LabelOutcome: outcome}
	if status > 0 {
		labels[metrics.LabelStatusCode] = strconv.Itoa(status)
		labels[metrics.LabelStatusMessage] = statusMessage
	}
	if rerr != nil {
		labels[metrics.LabelErrorCode] = rerr.Code
		labels[metrics.LabelErrorMessage] = rerr.Message
	}
	return labels
}
