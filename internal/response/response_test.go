package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDAndEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware(zerolog.Nop()))
	r.GET("/ok", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{"v": 1}) })
	r.GET("/bad", func(c *gin.Context) {
		FailWithFields(c, http.StatusUnprocessableEntity, ErrMissingReference, map[string]string{"identifier": "q9"})
	})

	const given = "4b1f2a3c-9d8e-4f00-8a11-2233445566ff"
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", given)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var ok Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.Equal(t, given, ok.Metadata.RequestID)
	assert.Equal(t, given, w.Header().Get("X-Request-ID"))
	assert.Nil(t, ok.Error)

	req = httptest.NewRequest(http.MethodGet, "/bad", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var bad Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bad))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotEqual(t, "not-a-uuid", bad.Metadata.RequestID)
	require.NotNil(t, bad.Error)
	assert.Equal(t, ErrMissingReference, bad.Error.Code)
	assert.Equal(t, "q9", bad.Error.Fields["identifier"])
	assert.Equal(t, GetMessage(ErrMissingReference), bad.Error.Message)
}
