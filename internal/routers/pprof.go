package routers

import (
	"net/http"
	"net/http/pprof"

	"github.com/haierkeys/fast-note-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewPrivateRouter creates the private router serving /metrics and, in debug mode, /debug/pprof
// NewPrivateRouter 创建私有路由：/metrics，debug 模式下额外提供 /debug/pprof
func NewPrivateRouter(runMode string, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RecoveryWithLogger(logger))

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	if runMode == "debug" {
		p := r.Group("/debug/pprof")
		{
			p.GET("/", pprofHandler(pprof.Index))
			p.GET("/cmdline", pprofHandler(pprof.Cmdline))
			p.GET("/profile", pprofHandler(pprof.Profile))
			p.POST("/symbol", pprofHandler(pprof.Symbol))
			p.GET("/symbol", pprofHandler(pprof.Symbol))
			p.GET("/trace", pprofHandler(pprof.Trace))
			p.GET("/:name", func(c *gin.Context) {
				pprof.Handler(c.Param("name")).ServeHTTP(c.Writer, c.Request)
			})
		}
	}

	return r
}

func pprofHandler(h http.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
