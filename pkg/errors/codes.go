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

package errors

import "net/http"

// Symbolic codes and messages.
const (
	CodeNoServiceSecret    = "ENOSERVICESECRET"
	CodeNoServiceSlug      = "ENOSERVICESLUG"
	CodeNoMicroserviceURL  = "ENOMICROSERVICEURL"
	CodeInvalidPrivateKey  = "EINVALIDPRIVATEKEY"
	MessageInvalidPayload  = "EINVALIDPAYLOAD"
	MessageUnknown         = "EUNKNOWN"
	MessageNoFingerprint   = "ENOFINGERPRINT"
	MessageUnspecified     = "EUNSPECIFIED"
	MessageNoError         = "ENOERROR"
	MessageInvalidURL      = "EINVALIDURL"
	MessageInvalidMethod   = "EINVALIDMETHOD"
	MessageInvalidResponse = "EINVALIDRESPONSE"
)

// Sentinels for errors.Is matching. They match on code and message only, so a
// tagged error raised by any client matches.
var (
	ErrNoServiceSecret   = &RequestError{Code: CodeNoServiceSecret}
	ErrNoServiceSlug     = &RequestError{Code: CodeNoServiceSlug}
	ErrNoMicroserviceURL = &RequestError{Code: CodeNoMicroserviceURL}
	ErrInvalidPrivateKey = &RequestError{Code: CodeInvalidPrivateKey}
	ErrInvalidPayload    = &RequestError{Code: StatusCode(http.StatusInternalServerError), Message: MessageInvalidPayload}
	ErrUnknown           = &RequestError{Code: StatusCode(http.StatusInternalServerError), Message: MessageUnknown}
	ErrNoFingerprint     = &RequestError{Code: StatusCode(http.StatusInternalServerError), Message: MessageNoFingerprint}
)

// LookupStatus maps a symbolic transport failure to the status reported for it.
func LookupStatus(key string) int {
	switch key {
	case "HTTPError":
		return http.StatusNotFound
	case "ENOTFOUND":
		return http.StatusBadGateway
	case "ECONNREFUSED":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
