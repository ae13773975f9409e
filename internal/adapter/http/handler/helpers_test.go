package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestReadBody(t *testing.T) {
	t.Run("reads whole body verbatim", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(` {"features": [1, 2]} `))

		raw, err := readBody(c)

		require.NoError(t, err)
		assert.Equal(t, ` {"features": [1, 2]} `, string(raw))
	})

	t.Run("body over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 32)))
		c.Request.Body = http.MaxBytesReader(w, c.Request.Body, 16)

		_, err := readBody(c)

		assert.ErrorIs(t, err, errBodyTooLarge)
		status, code := bodyErrorStatus(err)
		assert.Equal(t, http.StatusRequestEntityTooLarge, status)
		assert.Equal(t, CodePayloadTooLarge, code)
	})

	t.Run("no body", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
		c.Request.Body = nil

		raw, err := readBody(c)

		assert.NoError(t, err)
		assert.Empty(t, raw)
	})
}

func TestBodyErrorStatus(t *testing.T) {
	status, code := bodyErrorStatus(errors.New("connection reset"))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeInvalidInput, code)
}
