package web

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sessionCookie   = "board_session"
	sessionKey      = "sessionId"
	sessionFreshKey = "sessionFresh"
	guestKeyPrefix  = "guest:"
)

// SessionMiddleware makes sure each viewer carries a board_session cookie.
// A missing or malformed cookie is replaced with a fresh UUID, and the
// request is marked fresh until the client sends the cookie back.
func SessionMiddleware(maxAge time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		fresh := err != nil || uuid.Validate(id) != nil
		if fresh {
			id = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, int(maxAge.Seconds()), "/", "", false, true)
		c.Set(sessionKey, id)
		c.Set(sessionFreshKey, fresh)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

// freshSession reports whether the session id was issued on this request.
func freshSession(c *gin.Context) bool {
	return c.GetBool(sessionFreshKey)
}

// viewerKey picks the board a read request is served from. Clients that
// have not returned their cookie yet share one guest board per IP.
func viewerKey(c *gin.Context) string {
	if freshSession(c) {
		return guestKeyPrefix + c.ClientIP()
	}
	return sessionID(c)
}

// LoggerMiddleware writes one structured access log entry per request.
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.Int("size", c.Writer.Size()),
		}
		if errs := c.Errors.String(); errs != "" {
			fields = append(fields, zap.String("error", errs))
		}
		logger.Info("request", fields...)
	}
}

// CORSMiddleware allows the JSON API to be called from the given origins.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowOrigins = origins
	config.AllowMethods = []string{"GET", "PUT", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	config.AllowCredentials = true
	return cors.New(config)
}
