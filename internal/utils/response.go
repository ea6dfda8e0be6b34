package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

type APIResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       interface{}     `json:"data"`
	Error      *APIError       `json:"error"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

type APIError struct {
	Message    string       `json:"message"`
	StatusCode int          `json:"statusCode"`
	Errors     []FieldError `json:"errors,omitempty"`
	Detail     string       `json:"detail,omitempty"`
}

var exposeErrorDetail bool

// SetErrorDetail toggles raw error text in 500 envelopes. Development only.
func SetErrorDetail(enabled bool) {
	exposeErrorDetail = enabled
}

func SuccessResponse(c *gin.Context, message string, data interface{}) {
	writeSuccess(c, http.StatusOK, message, data, nil)
}

func CreatedResponse(c *gin.Context, message string, data interface{}) {
	writeSuccess(c, http.StatusCreated, message, data, nil)
}

func PaginatedResponse(c *gin.Context, message string, data interface{}, meta *PaginationMeta) {
	writeSuccess(c, http.StatusOK, message, data, meta)
}

func writeSuccess(c *gin.Context, status int, message string, data interface{}, meta *PaginationMeta) {
	c.JSON(status, APIResponse{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: meta,
		Timestamp:  time.Now().UTC(),
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	writeError(c, statusCode, message, &APIError{Message: message, StatusCode: statusCode})
}

func writeError(c *gin.Context, statusCode int, message string, apiErr *APIError) {
	c.AbortWithStatusJSON(statusCode, APIResponse{
		Success:   false,
		Message:   message,
		Data:      nil,
		Error:     apiErr,
		Timestamp: time.Now().UTC(),
	})
}

// HandleError writes the envelope for err. Errors that are not AppErrors are
// reported as a generic 500.
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)

	appErr, ok := AsAppError(err)
	if !ok {
		if mongo.IsDuplicateKeyError(err) {
			appErr = NewConflictError("Duplicate value. Please use another value.").Wrap(err)
		} else {
			appErr = NewInternalError(err)
		}
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		apiErr := &APIError{Message: MsgInternalServer, StatusCode: status}
		if exposeErrorDetail && appErr.Err != nil {
			apiErr.Detail = appErr.Err.Error()
		}
		writeError(c, status, MsgSomethingWrong, apiErr)
		return
	}

	writeError(c, status, appErr.Message, &APIError{
		Message:    appErr.Message,
		StatusCode: status,
		Errors:     appErr.Errors,
	})
}

func NotFoundRouteResponse(c *gin.Context) {
	writeError(c, http.StatusNotFound, "Route "+c.Request.URL.Path+" not found", &APIError{
		Message:    "Not Found",
		StatusCode: http.StatusNotFound,
	})
}
