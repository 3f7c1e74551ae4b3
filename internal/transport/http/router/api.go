package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sticky-notes-api/internal/core/auth"
	"sticky-notes-api/internal/core/config"
	"sticky-notes-api/internal/transport/http/handler"
	mdw "sticky-notes-api/internal/transport/http/middleware"
)

func NewAPIEngine(l *zap.Logger, cfg *config.Config, jwter *auth.JWTer, userH *handler.UserHandler, noteH *handler.NoteHandler) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.Recovery(l),
		mdw.Metrics(),
		ginzap.Ginzap(l, time.RFC3339, true),
	)

	// 带 cookie 的跨域：必须显式列 origin，不能用 *
	corsCfg := cors.DefaultConfig()
	if len(cfg.App.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.App.CORSOrigins
	} else {
		corsCfg.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	corsCfg.AllowCredentials = true
	r.Use(cors.New(corsCfg))

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "Sticky Notes API is running") })
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	// 公共路由
	user := api.Group("/user")
	user.POST("/register", userH.Register)
	user.POST("/login", userH.Login)
	user.GET("/generate/refreshtoken", userH.Refresh)

	// 鉴权路由
	userAuth := api.Group("/user")
	userAuth.Use(mdw.AuthJWT(jwter, l))
	userAuth.GET("", userH.Me)
	userAuth.PUT("/update", userH.Update)
	userAuth.POST("/logout", userH.Logout)

	note := api.Group("/note")
	note.Use(mdw.AuthJWT(jwter, l))
	note.GET("", noteH.List)
	note.POST("/addNotes", noteH.Add)
	note.PUT("/updateNote/:noteId", noteH.Update)
	note.DELETE("/trash/:noteId", noteH.Delete)

	return r
}
