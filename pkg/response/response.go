package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// Response is the uniform API envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"msg"`
	Data    interface{} `json:"data"`
}

func Success(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 200, Message: msg, Data: data})
}

func Fail(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, Response{Code: httpStatus, Message: msg})
}

// Error maps an analysis error onto the envelope, carrying the stable error
// code and whether the caller may retry.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if !voice.IsRetryable(err) {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{
		"code":      status,
		"msg":       err.Error(),
		"error":     voice.ErrorCode(err),
		"retryable": voice.IsRetryable(err),
	})
}
