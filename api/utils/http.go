// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// httpError carries the status a handler failure is answered with.
type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	if e.cause == nil {
		return http.StatusText(e.status)
	}
	return e.cause.Error()
}

func (e *httpError) Unwrap() error { return e.cause }

// HTTPError attaches status to cause. A nil cause answers with an empty body.
func HTTPError(cause error, status int) error {
	return &httpError{cause, status}
}

func BadRequest(cause error) error { return HTTPError(cause, http.StatusBadRequest) }

func Forbidden(cause error) error { return HTTPError(cause, http.StatusForbidden) }

// StatusOf returns the status err is answered with, 500 unless an HTTPError is in its chain.
func StatusOf(err error) int {
	var he *httpError
	if errors.As(err, &he) {
		return he.status
	}
	return http.StatusInternalServerError
}

// HandlerFunc is an http.HandlerFunc that reports failures instead of writing them.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc writes a failure of f as a plain text error with its StatusOf code.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		status := StatusOf(err)
		if he := (*httpError)(nil); errors.As(err, &he) && he.cause == nil {
			w.WriteHeader(status)
			return
		}
		http.Error(w, err.Error(), status)
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// M shortcut for type map[string]any.
type M map[string]any
