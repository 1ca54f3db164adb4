package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

const networkErrorMessage = "Network error found!"

// Response is the raw result of a request.
type Response struct {
	Body   []byte
	Status int
	Header http.Header
}

// Decode JSON-decodes the response body into v.
func (r Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("Couldn't decode response body: %w", err)
	}
	return nil
}

// ResponseError is returned for every failed request.
// Its Response contains the server's status, headers and body, or a synthetic one if there was no usable server response:
//
//   - No response at all (network error): status 503, body {"message":"Network error found!"}
//   - Any other failure without server status: status 500, body {"message":"<error>"}
type ResponseError struct {
	Response Response
	network  bool
	cause    error
}

func newNetworkError(cause error) *ResponseError {
	return &ResponseError{
		Response: Response{
			Body:   messageBody(networkErrorMessage),
			Status: http.StatusServiceUnavailable,
			Header: http.Header{},
		},
		network: true,
		cause:   cause,
	}
}

func newInternalError(cause error) *ResponseError {
	return newStatusError(http.StatusInternalServerError, cause)
}

func newStatusError(status int, cause error) *ResponseError {
	return &ResponseError{
		Response: Response{
			Body:   messageBody(cause.Error()),
			Status: status,
			Header: http.Header{},
		},
		cause: cause,
	}
}

func messageBody(message string) []byte {
	// Marshalling a map with a string value can't fail
	body, _ := json.Marshal(map[string]string{"message": message})
	return body
}

func (e *ResponseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("request failed with status %d: %v", e.Response.Status, e.cause)
	}
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("request failed with status %d: %v", e.Response.Status, msg)
	}
	return fmt.Sprintf("request failed with status %d", e.Response.Status)
}

func (e *ResponseError) Unwrap() error {
	return e.cause
}

// Message returns the "message" field of the response body, if it exists.
func (e *ResponseError) Message() string {
	return gjson.GetBytes(e.Response.Body, "message").String()
}

// IsNetworkError reports whether err is a ResponseError for a request that didn't get any response.
func IsNetworkError(err error) bool {
	var resErr *ResponseError
	return errors.As(err, &resErr) && resErr.network
}

// StatusCode returns the status of a ResponseError in err's chain, or 0 if there's none.
func StatusCode(err error) int {
	var resErr *ResponseError
	if errors.As(err, &resErr) {
		return resErr.Response.Status
	}
	return 0
}
