package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxErrorBody bounds how much of a failed response body is kept for messages.
const maxErrorBody = 4096

// StatusError reports a response whose status code was not expected.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// DoJSON executes req and decodes a JSON body into out when the status is one
// of accept. Any other status, network failure, or decode failure is returned
// tagged with ErrTransport. A nil out skips decoding.
func DoJSON(client *http.Client, req *http.Request, service, operation string, out any, accept ...int) error {
	if len(accept) == 0 {
		accept = []int{http.StatusOK}
	}
	requestStart := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return Wrap(ErrTransport, service, operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if !statusAccepted(resp.StatusCode, accept) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Wrap(ErrTransport, service, operation, "", &StatusError{StatusCode: resp.StatusCode, Body: body})
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Wrap(ErrTransport, service, operation, "decode response", err)
	}
	return nil
}

func statusAccepted(code int, accept []int) bool {
	for _, candidate := range accept {
		if code == candidate {
			return true
		}
	}
	return false
}
