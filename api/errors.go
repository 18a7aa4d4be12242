package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Error describes a failed REST call. StatusCode is zero when the request
// never produced a response.
type Error struct {
	Op         string
	StatusCode int
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Detail)
	default:
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or zero.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether the API rejected the bearer credential.
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

// Detail returns the human-readable message the API attached to err.
func Detail(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// errorDetail extracts a message from the API's JSON error bodies:
// {"detail": "..."}, {"non_field_errors": ["..."]} or {"field": ["..."]}.
func errorDetail(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}

	parsed := gjson.ParseBytes(body)
	if detail := parsed.Get("detail"); detail.Exists() {
		return detail.String()
	}
	if nonField := parsed.Get("non_field_errors.0"); nonField.Exists() {
		return nonField.String()
	}

	var detail string
	parsed.ForEach(func(key, value gjson.Result) bool {
		msg := value.String()
		if value.IsArray() {
			msg = value.Get("0").String()
		}
		if msg == "" {
			return true
		}
		detail = strings.TrimSpace(key.String() + ": " + msg)
		return false
	})
	return detail
}
