package middleware

import (
	"time"

	"github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLogWithLogger 每个请求记录一条访问日志
func AccessLogWithLogger(zl *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		startTime := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String(logger.FieldMethod, c.Request.Method),
			zap.String("url", path+"?"+query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration(logger.FieldDuration, time.Since(startTime)),
			zap.String("ip", app.GetRequestIP(c)),
			zap.String("user-agent", c.Request.UserAgent()),
		}
		if traceID := GetTraceIDFromGin(c); traceID != "" {
			fields = append(fields, zap.String(logger.FieldTraceID, traceID))
		}
		if uid := app.GetUID(c); uid != "" {
			fields = append(fields, zap.String(logger.FieldUID, uid))
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, zap.String("errors", errs))
		}

		zl.Info(path, fields...)
	}
}
