package api

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/loopline-app/loopline-admin/internal/logging"
)

const (
	ctxAdminIDKey   = "__admin_id__"
	ctxAdminRoleKey = "__admin_role__"
)

// requestIDMiddleware tags every request with an 8-character hex ID and logs
// the method, path, status, and latency once the handler chain finishes.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := logging.GenerateRequestID()
		logging.SetGinRequestID(c, requestID)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), requestID))

		start := time.Now()
		c.Next()

		log.WithField("request_id", requestID).Debugf("%s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}

// corsMiddleware allows the console origin to reach the API from a browser
// context. The terminal console does not need it, but the contract keeps the
// backend usable from a web front as well.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// authRequired validates the bearer access token and stores the admin
// identity in the gin context. Missing, malformed, expired, and revoked
// tokens all answer 401 so the client pipeline can run its refresh flow.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == "" || token == header {
			respondError(c, 401, "missing bearer token")
			c.Abort()
			return
		}
		adminID, role, err := s.tokens.ValidateAccess(token)
		if err != nil {
			respondError(c, 401, "invalid or expired access token")
			c.Abort()
			return
		}
		c.Set(ctxAdminIDKey, adminID)
		c.Set(ctxAdminRoleKey, role)
		c.Next()
	}
}

func adminIDFrom(c *gin.Context) string {
	if v, ok := c.Get(ctxAdminIDKey); ok {
		if id, ok2 := v.(string); ok2 {
			return id
		}
	}
	return ""
}
