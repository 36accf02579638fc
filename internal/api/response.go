package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the standard envelope for non-facade endpoints (health, plain
// errors); facade-backed endpoints render their own JSON via WriteFacadeResult.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SuccessResponse sends a success response
func SuccessResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, &Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreatedResponse sends a 201 created response
func CreatedResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, &Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse sends an error response
func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, &Response{
		Success: false,
		Message: message,
	})
}

// BadRequestError sends a 400 error
func BadRequestError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message)
}

// NotFoundError sends a 404 error
func NotFoundError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, message)
}

// InternalError sends a 500 error
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, message)
}

// UnauthorizedError sends a 401 error
func UnauthorizedError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, message)
}

// TooManyRequestsError sends a 429 error
func TooManyRequestsError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusTooManyRequests, message)
}

// PayloadTooLargeError sends a 413 error
func PayloadTooLargeError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusRequestEntityTooLarge, message)
}

// WriteFacadeResult renders a facade handle's (json []byte, err error)
// result: a transport-level err (malformed Go-side call) is a 500, while an
// {"error":{...}} ABI envelope in body is translated to the matching HTTP
// status via the code it carries.
func WriteFacadeResult(c *gin.Context, status int, body []byte, err error) {
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	var env struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		c.Data(abiCodeToStatus(env.Error.Code), "application/json", body)
		return
	}
	c.Data(status, "application/json", body)
}

func abiCodeToStatus(code int) int {
	switch code {
	case 1001:
		return http.StatusBadRequest
	case 1002:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
