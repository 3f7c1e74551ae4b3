package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "sticky-notes-api/internal/transport/http/response"
)

// Recovery panic 一律转成统一 500 响应，细节只进日志
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered", zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					resp.Fail(http.StatusInternalServerError, "Internal Server Error"))
			}
		}()
		c.Next()
	}
}
