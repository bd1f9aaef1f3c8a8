package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func record(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/", handler, func(c *gin.Context) { c.Header("X-Reached", "yes") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestSuccess(t *testing.T) {
	w := record(func(c *gin.Context) { Success(c, http.StatusCreated, gin.H{"id": 1}) })

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":1}}`, w.Body.String())
}

func TestErrorWithDetails(t *testing.T) {
	w := record(func(c *gin.Context) {
		ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking",
			map[string]string{"patientName": "required"})
		c.Abort()
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"VALIDATION_ERROR","message":"Invalid booking",
		"details":{"patientName":"required"}}}`, w.Body.String())
}

func TestError_OmitsDetails(t *testing.T) {
	w := record(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
		c.Abort()
	})

	assert.JSONEq(t, `{"success":false,"error":{"code":"NOT_FOUND","message":"Booking not found"}}`, w.Body.String())
}

func TestAbort_StopsChain(t *testing.T) {
	w := record(func(c *gin.Context) { Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied") })

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("X-Reached"))
	assert.Contains(t, w.Body.String(), `"code":"FORBIDDEN"`)
}
