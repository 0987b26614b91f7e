package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAllowCutsOffAfterBurst(t *testing.T) {
	l := NewIPRateLimiter(60, 3)

	allowed := 0
	for i := 0; i < 10; i++ {
		if l.Allow("1.2.3.4") {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("allowed %d immediate requests, want burst of 3", allowed)
	}
}

func TestIPsAreIndependent(t *testing.T) {
	l := NewIPRateLimiter(60, 1)

	if !l.Allow("1.1.1.1") {
		t.Fatal("first request for first IP denied")
	}
	if l.Allow("1.1.1.1") {
		t.Fatal("burst of 1 allowed a second request")
	}
	if !l.Allow("2.2.2.2") {
		t.Fatal("fresh IP denied because of another IP's usage")
	}
}

func TestMiddlewareReturns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewIPRateLimiter(60, 1)

	r := gin.New()
	r.GET("/", l.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK {
		t.Fatalf("first request = %d, want 200", codes[0])
	}
	for _, code := range codes[1:] {
		if code != http.StatusTooManyRequests {
			t.Fatalf("follow-up request = %d, want 429", code)
		}
	}
}
