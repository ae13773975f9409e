package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	// errBodyTooLarge is returned by readBody when the MaxBodySize limit is hit
	errBodyTooLarge   = errors.New("request body too large")
	errModelNotLoaded = errors.New("model not loaded")
)

// readBody reads the whole request body, which the caller needs verbatim
func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, maxErr.Limit)
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return raw, nil
}

// bodyErrorStatus maps a readBody error to a status and error code
func bodyErrorStatus(err error) (int, string) {
	if errors.Is(err, errBodyTooLarge) {
		return http.StatusRequestEntityTooLarge, CodePayloadTooLarge
	}
	return http.StatusBadRequest, CodeInvalidInput
}
