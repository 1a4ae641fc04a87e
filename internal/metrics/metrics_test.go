package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.DELETE("/items/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodDelete, "/items/:id", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/items/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/items/def", nil))

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodDelete, "/items/:id", "404"))
	assert.Equal(t, before+2, after)
}

func TestObserveStoreOutcome(t *testing.T) {
	ObserveStore("find", "metrics_test", time.Now(), nil)
	ObserveStore("find", "metrics_test", time.Now(), errors.New("boom"))

	assert.Equal(t, 2, testutil.CollectAndCount(StoreOperationDuration, "store_operation_duration_seconds"))
}
