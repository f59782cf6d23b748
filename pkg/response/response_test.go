package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func record(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	return w
}

func TestSuccessEnvelope(t *testing.T) {
	w := record(func(c *gin.Context) {
		Success(c, "done", gin.H{"value": 7})
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, "done", resp.Message)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 7, data["value"])
}

func TestFailEnvelope(t *testing.T) {
	w := record(func(c *gin.Context) {
		Fail(c, http.StatusNotFound, "no such session")
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "no such session", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestErrorNonRetryableIsBadRequest(t *testing.T) {
	w := record(func(c *gin.Context) {
		Error(c, voice.NewDecodeError("bad header"))
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "DECODE_FAILED", body["error"])
	assert.Equal(t, false, body["retryable"])
	assert.EqualValues(t, http.StatusBadRequest, body["code"])
}

func TestErrorRetryableIsServerError(t *testing.T) {
	w := record(func(c *gin.Context) {
		Error(c, voice.NewModelUnavailableError("classifier offline", "dial refused"))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "MODEL_UNAVAILABLE", body["error"])
	assert.Equal(t, true, body["retryable"])
}
