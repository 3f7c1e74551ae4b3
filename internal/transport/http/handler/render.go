package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sticky-notes-api/internal/apperr"
	"sticky-notes-api/internal/core/auth"
	mdw "sticky-notes-api/internal/transport/http/middleware"
	resp "sticky-notes-api/internal/transport/http/response"
)

// respondErr 统一出口：先记日志，再把错误翻译成响应体。
// 未识别的错误一律 500 + 固定文案，内部细节不外泄。
func respondErr(c *gin.Context, l *zap.Logger, err error) {
	var e *apperr.E
	if errors.As(err, &e) {
		l.Error("request failed",
			zap.Int("status", e.Code),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(e.Code, resp.Fail(e.Code, e.Msg))
		return
	}
	l.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError,
		resp.Fail(http.StatusInternalServerError, "Internal Server Error"))
}

const (
	accessCookieMaxAge  = 7 * 24 * 60 * 60  // 7 天
	refreshCookieMaxAge = 30 * 24 * 60 * 60 // 30 天
)

// setAuthCookies 生产环境 secure + SameSite strict，本地 lax
func setAuthCookies(c *gin.Context, p auth.Pair, env string) {
	secure := env == "production"
	if secure {
		c.SetSameSite(http.SameSiteStrictMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(mdw.CookieAccessToken, p.AccessToken, accessCookieMaxAge, "/", "", secure, true)
	c.SetCookie(mdw.CookieRefreshToken, p.RefreshToken, refreshCookieMaxAge, "/", "", secure, true)
}

func clearAuthCookies(c *gin.Context) {
	c.SetCookie(mdw.CookieAccessToken, "", -1, "/", "", false, true)
	c.SetCookie(mdw.CookieRefreshToken, "", -1, "/", "", false, true)
}
