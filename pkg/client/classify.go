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
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/tombee/formclient/pkg/errors"
	"github.com/tombee/formclient/pkg/transport"
)

// errNotObject reports a 2xx body that is valid JSON but not an object.
var errNotObject = stderrors.New("response body is not a JSON object")

// bodyError reports a 2xx response whose body could not be used.
type bodyError struct {
	status        int
	statusMessage string
	body          []byte
	cause         error
}

func (e *bodyError) Error() string {
	return "unusable response body (status " + strconv.Itoa(e.status) + "): " + e.cause.Error()
}

func (e *bodyError) Unwrap() error {
	return e.cause
}

// isParseError reports whether err came from decoding JSON.
func isParseError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, errNotObject)
}

// Classify maps a failure onto a RequestError. The rules apply in order:
//
//  1. a RequestError already in the chain is returned unchanged;
//  2. a response status: 401-499 become code and message; otherwise the
//     status is the code and the message comes from the error body;
//  3. an error body without a status: the code is looked up from the message;
//  4. a relayed response: its body supplies name and code;
//  5. anything else: the system error code, looked up.
//
// A 2xx response with an unusable body becomes EINVALIDPAYLOAD when the body
// failed to parse and EUNKNOWN otherwise.
func Classify(err error) *errors.RequestError {
	if err == nil {
		return nil
	}

	if rerr, ok := errors.AsRequestError(err); ok {
		return rerr
	}

	var berr *bodyError
	if errors.As(err, &berr) {
		message := errors.MessageUnknown
		if isParseError(berr.cause) {
			message = errors.MessageInvalidPayload
		}
		return classified(http.StatusInternalServerError, message, err)
	}

	var terr *transport.TransportError
	if !errors.As(err, &terr) {
		message := orDefault(transport.ErrnoCode(err), errors.MessageNoError)
		return classified(errors.LookupStatus(message), message, err)
	}

	if status := terr.StatusCode; status != 0 {
		if status > 400 && status < 500 {
			code := errors.StatusCode(status)
			return errors.NewRequestError(code, code, nil).WithCause(err)
		}
		message := orDefault(terr.Code, errors.MessageNoError)
		if obj := terr.ErrorObject(); obj != nil {
			message = objectMessage(obj)
		}
		return classified(status, message, err)
	}

	if obj := terr.ErrorObject(); obj != nil {
		message := objectMessage(obj)
		return classified(errors.LookupStatus(message), message, err)
	}

	if obj := terr.ResponseObject(); obj != nil {
		message := orDefault(stringField(obj, "name"), errors.MessageNoError)
		code := stringField(obj, "code")
		if code == "" {
			code = errors.StatusCode(errors.LookupStatus(message))
		}
		return errors.NewRequestError(code, message, nil).WithCause(err)
	}

	message := orDefault(terr.Code, errors.MessageNoError)
	return classified(errors.LookupStatus(message), message, err)
}

func classified(status int, message string, cause error) *errors.RequestError {
	return errors.NewRequestError(errors.StatusCode(status), message, nil).WithCause(cause)
}

// objectMessage picks name, then code, from an error body.
func objectMessage(obj map[string]any) string {
	if name := stringField(obj, "name"); name != "" {
		return name
	}
	return orDefault(stringField(obj, "code"), errors.MessageUnspecified)
}

// stringField renders a string or numeric field of a decoded JSON object.
func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
