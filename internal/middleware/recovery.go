package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"
	"github.com/haierkeys/fast-note-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger 捕获 panic，记录堆栈并返回 ErrorServerInternal
func RecoveryWithLogger(zl *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			fields := []zap.Field{
				zap.String("router", c.Request.URL.Path),
				zap.String(logger.FieldMethod, c.Request.Method),
				zap.String("query", c.Request.URL.RawQuery),
				zap.String("ip", app.GetRequestIP(c)),
				zap.String(logger.FieldTraceID, GetTraceIDFromGin(c)),
				zap.String("stack", string(debug.Stack())),
			}
			if err, ok := r.(error); ok {
				zl.Error("Recovered from panic", append(fields, zap.Error(err))...)
			} else {
				zl.Error("Recovered from panic", append(fields, zap.String("panic_value", fmt.Sprintf("%v", r)))...)
			}

			// 不向客户端暴露 panic 内容
			app.NewResponse(c).ToResponse(code.ErrorServerInternal)
			c.Abort()
		}()

		c.Next()
	}
}
