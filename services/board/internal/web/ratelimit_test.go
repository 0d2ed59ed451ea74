package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestLimiterStoreAllowsBurstPerKey(t *testing.T) {
	store := newLimiterStore(rate.Limit(1), 2)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	assert.True(t, store.allow("a"))
	assert.True(t, store.allow("a"))
	assert.False(t, store.allow("a"))
	assert.True(t, store.allow("b"))

	fixed = fixed.Add(time.Second)
	assert.True(t, store.allow("a"))
}

func TestLimiterStoreDropsStaleEntries(t *testing.T) {
	store := newLimiterStore(rate.Limit(1), 1)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	store.allow("a")
	fixed = fixed.Add(limiterStaleAfter)
	store.allow("b")

	assert.Len(t, store.entries, 1)
	assert.Contains(t, store.entries, "b")
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(SessionMiddleware(time.Hour), RateLimitMiddleware(0.001, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	cookie := &http.Cookie{Name: sessionCookie, Value: "4b7c1a4e-0f59-4c55-9d8b-6f1f3d7e2a10"}
	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(0, 0))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
