package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTraceTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "%s|%s", c.GetString("trace_id"), c.GetString("request_id"))
	})
	return r
}

func TestAttachTraceContextGeneratesIDs(t *testing.T) {
	r := newTraceTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	traceID := w.Header().Get("X-Trace-Id")
	reqID := w.Header().Get("X-Request-Id")
	if traceID == "" || reqID == "" {
		t.Fatalf("missing response headers: trace=%q request=%q", traceID, reqID)
	}
	if got, want := w.Body.String(), traceID+"|"+reqID; got != want {
		t.Fatalf("gin context ids %q do not match headers %q", got, want)
	}
}

func TestAttachTraceContextHonorsCallerHeaders(t *testing.T) {
	r := newTraceTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace-Id", "trace-from-caller")
	req.Header.Set("X-Request-Id", "req-from-caller")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Trace-Id"); got != "trace-from-caller" {
		t.Fatalf("trace id not echoed, got %q", got)
	}
	if got := w.Header().Get("X-Request-Id"); got != "req-from-caller" {
		t.Fatalf("request id not echoed, got %q", got)
	}
}
