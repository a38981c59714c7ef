package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/denmor86/ya-minerpool/internal/models"
)

var (
	ErrServiceUnavailable = errors.New("pool service unavailable")
	ErrInvalidResponse    = errors.New("invalid pool response")
)

// ServerError - ошибка, о которой сообщил сам сервер в поле error
type ServerError struct {
	Status int
	Reason string
}

func (e *ServerError) Error() string {
	return e.Reason
}

type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "rate limit exceeded"
}

func NewRateLimitError(headers http.Header) *RateLimitError {
	return &RateLimitError{
		RetryAfter: ParseRetryAfter(headers),
	}
}

// IsServerError - true, если ошибка пришла от сервера в теле ответа
func IsServerError(err error) bool {
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}

// HandleErrorResponse - разбор неуспешного ответа сервера
func HandleErrorResponse(resp *http.Response) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return NewRateLimitError(resp.Header)
	}
	if reason := readErrorReason(resp.Body); reason != "" {
		return &ServerError{Status: resp.StatusCode, Reason: reason}
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return ErrServiceUnavailable
	}
	return fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
}

func readErrorReason(body io.Reader) string {
	var errResp models.ErrorResponse
	if err := json.NewDecoder(body).Decode(&errResp); err != nil {
		return ""
	}
	return errResp.Error
}
