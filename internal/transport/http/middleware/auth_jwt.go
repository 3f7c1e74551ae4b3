package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sticky-notes-api/internal/core/auth"
	resp "sticky-notes-api/internal/transport/http/response"
)

const (
	CtxClaims = "claims"
	CtxUserID = "userId"

	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
)

// AuthJWT 从 Authorization 头取 Bearer token，取不到退回 accessToken cookie。
// 过期 / 非法 / 其它校验失败分别映射 401 / 401 / 500。
func AuthJWT(j *auth.JWTer, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
			token = strings.TrimPrefix(ah, "Bearer ")
		} else if ck, err := c.Cookie(CookieAccessToken); err == nil {
			token = ck
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				resp.Fail(http.StatusUnauthorized, "Access token missing or not provided"))
			return
		}

		claims, err := j.ParseAccess(token)
		if err != nil {
			l.Warn("jwt verification failed", zap.Error(err))
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					resp.Fail(http.StatusUnauthorized, "Token expired, please login again"))
			case errors.Is(err, auth.ErrTokenInvalid):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					resp.Fail(http.StatusUnauthorized, "Invalid token, authentication failed"))
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					resp.Fail(http.StatusInternalServerError, "Internal server error during token verification"))
			}
			return
		}

		// 上传方内部 id 不下发给业务处理器
		claims.Avatar.PublicID = ""
		c.Set(CtxClaims, claims)
		c.Set(CtxUserID, claims.UID)
		c.Next()
	}
}
