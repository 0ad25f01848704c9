package middleware

import (
	"fmt"
	"net/http"

	pkgerrors "codefix/pkg/errors"
	"codefix/pkg/utils/logger"
	"codefix/pkg/utils/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a panic into a 500 envelope instead of a dropped connection.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error(c.Request.Context(), "panic recovered",
			zap.String("path", c.Request.URL.Path),
			zap.Any("panic", recovered),
		)
		if c.Writer.Written() {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		response.AbortWithError(c, pkgerrors.New(pkgerrors.InternalServerError).
			WithDetail("panic", fmt.Sprint(recovered)))
	})
}

// NotFound answers unknown routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Error(c, pkgerrors.Newf(pkgerrors.RouteNotFound, "Route %s not found", c.Request.URL.Path))
	}
}
