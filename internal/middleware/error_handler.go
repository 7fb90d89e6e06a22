package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/measure-pricing-service/internal/domain/dto"
	"github.com/guttosm/measure-pricing-service/internal/i18n"
	"github.com/guttosm/measure-pricing-service/internal/logger"
)

// ErrorHandler logs the errors handlers attached to the gin context. When a
// handler recorded an error without writing a response, it answers 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		requestID := GetRequestID(c)
		written := c.Writer.Written()

		log := logger.Logger()
		event := log.Warn()
		if !written || c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("request_id", requestID).
			Strs("errors", c.Errors.Errors()).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Int("status_code", c.Writer.Status()).
			Msg("Request error")

		if !written {
			message := i18n.GetTranslator().Translate(i18n.ErrKeyInternalError, i18n.GetLocale(c))
			c.JSON(http.StatusInternalServerError, dto.NewError(dto.ErrCodeInternal, message).WithRequestID(requestID))
		}
	}
}
