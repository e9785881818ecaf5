package acl

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jsamuelsen/verse-service/internal/adapters/clients"
	"github.com/jsamuelsen/verse-service/internal/domain"
)

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 512

// MapHTTPError translates a failed outbound call into a domain error.
// resp may be nil when clientErr is set. A 2xx/3xx resp yields nil.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation, entityID string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	message := readMessage(resp.Body)
	if message == "" {
		message = fmt.Sprintf("%s failed with status %d", operation, resp.StatusCode)
	}

	return mapStatusCode(resp.StatusCode, message, serviceName, operation, entityID)
}

func mapClientError(err error, serviceName, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName, "circuit breaker open during "+operation)
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(serviceName, "max retries exceeded during "+operation)
	default:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("%s failed: %v", operation, err))
	}
}

func mapStatusCode(status int, message, serviceName, operation, entityID string) error {
	switch {
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(serviceName, entityID)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return domain.NewUnauthorizedError(operation + ": " + message)
	case status == http.StatusConflict:
		return domain.NewConflictError(serviceName, message)
	case status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, "rate limit exceeded")
	case status >= http.StatusInternalServerError:
		return domain.NewUnavailableError(serviceName, message)
	default:
		return domain.NewValidationError("", message)
	}
}

// readMessage returns the first line of a plain-text error body.
func readMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	b, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return ""
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(b)), "\n")

	return strings.TrimSpace(line)
}
