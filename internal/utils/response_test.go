package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/t", handler)
	router.NoRoute(NotFoundRouteResponse)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/t", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestSuccessEnvelope(t *testing.T) {
	w := serve(func(c *gin.Context) {
		SuccessResponse(c, "OK", gin.H{"id": 1})
	})

	body := w.Body.String()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, "OK", gjson.Get(body, "message").String())
	assert.Equal(t, int64(1), gjson.Get(body, "data.id").Int())
	assert.Equal(t, gjson.Null, gjson.Get(body, "error").Type)
	assert.True(t, gjson.Get(body, "timestamp").Exists())
	assert.False(t, gjson.Get(body, "pagination").Exists())
}

func TestPaginatedEnvelope(t *testing.T) {
	w := serve(func(c *gin.Context) {
		meta := CreatePaginationMeta(NewPaginationParams(2, 10), 35)
		PaginatedResponse(c, "Trips", []int{1, 2}, meta)
	})

	body := w.Body.String()
	assert.Equal(t, int64(2), gjson.Get(body, "pagination.currentPage").Int())
	assert.Equal(t, int64(4), gjson.Get(body, "pagination.totalPages").Int())
	assert.Equal(t, int64(35), gjson.Get(body, "pagination.totalItems").Int())
	assert.Equal(t, int64(10), gjson.Get(body, "pagination.itemsPerPage").Int())
	assert.True(t, gjson.Get(body, "pagination.hasNextPage").Bool())
	assert.True(t, gjson.Get(body, "pagination.hasPrevPage").Bool())
}

func TestHandleErrorKinds(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{NewNotFoundError("Trip not found"), http.StatusNotFound, "Trip not found"},
		{NewBadRequestError("Only %d spots available", 3), http.StatusBadRequest, "Only 3 spots available"},
		{NewConflictError("Email already registered"), http.StatusConflict, "Email already registered"},
		{NewUnauthorizedError("Invalid token"), http.StatusUnauthorized, "Invalid token"},
		{NewForbiddenError(MsgAdminRequired), http.StatusForbidden, MsgAdminRequired},
		{NewRateLimitedError(), http.StatusTooManyRequests, MsgRateLimited},
	}

	for _, tc := range cases {
		w := serve(func(c *gin.Context) { HandleError(c, tc.err) })
		body := w.Body.String()

		assert.Equal(t, tc.status, w.Code)
		assert.False(t, gjson.Get(body, "success").Bool())
		assert.Equal(t, tc.message, gjson.Get(body, "message").String())
		assert.Equal(t, tc.message, gjson.Get(body, "error.message").String())
		assert.Equal(t, int64(tc.status), gjson.Get(body, "error.statusCode").Int())
		assert.Equal(t, gjson.Null, gjson.Get(body, "data").Type)
	}
}

func TestHandleErrorValidationCarriesFields(t *testing.T) {
	w := serve(func(c *gin.Context) {
		HandleError(c, NewValidationError([]FieldError{{Field: "email", Message: "email is required"}}))
	})

	body := w.Body.String()
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, MsgValidationFailed, gjson.Get(body, "message").String())
	assert.Equal(t, "email", gjson.Get(body, "error.errors.0.field").String())
}

func TestHandleErrorHidesInternals(t *testing.T) {
	SetErrorDetail(false)
	w := serve(func(c *gin.Context) { HandleError(c, errors.New("connection refused")) })

	body := w.Body.String()
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, MsgSomethingWrong, gjson.Get(body, "message").String())
	assert.Equal(t, MsgInternalServer, gjson.Get(body, "error.message").String())
	assert.NotContains(t, body, "connection refused")

	SetErrorDetail(true)
	defer SetErrorDetail(false)
	w = serve(func(c *gin.Context) { HandleError(c, errors.New("connection refused")) })
	assert.Equal(t, "connection refused", gjson.Get(w.Body.String(), "error.detail").String())
}

func TestNotFoundRoute(t *testing.T) {
	router := gin.New()
	router.NoRoute(NotFoundRouteResponse)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/nope", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route /api/nope not found", gjson.Get(w.Body.String(), "message").String())
}
