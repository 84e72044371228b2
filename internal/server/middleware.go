package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// requestID はリクエストIDを引き継ぐか新たに発行する
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// accessLog はリクエスト毎にアクセスログを出力する
func accessLog(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"bytes":       c.Writer.Size(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
			requestIDKey:  c.GetString(requestIDKey),
		}).Info("HTTP Request")
	}
}

// recovery はハンドラ内の panic を 500 に変換する
func recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, err any) {
		logger.WithFields(logrus.Fields{
			"panic":      err,
			"path":       c.Request.URL.Path,
			requestIDKey: c.GetString(requestIDKey),
		}).Error("ハンドラで panic が発生しました")
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

// requestLogger はリクエストIDを付与したログエントリを返す
func (s *Server) requestLogger(c *gin.Context) *logrus.Entry {
	return s.logger.WithField(requestIDKey, c.GetString(requestIDKey))
}
