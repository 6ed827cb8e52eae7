// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wajba/internal/http/handlers"
	"wajba/internal/http/middleware"
	"wajba/internal/modules/channel"
	"wajba/internal/modules/registry"
	"wajba/internal/modules/session"
)

func NewRouter(
	sessionService *session.Service,
	dispatcher *channel.Dispatcher,
	registryService *registry.Service,
) http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	webhookHandler := handlers.NewWebhookHandler(sessionService, dispatcher)
	r.POST("/webhook/customer", webhookHandler.Customer)
	r.POST("/webhook/channel", webhookHandler.Channel)

	orderHandler := handlers.NewOrderHandler(registryService)
	r.GET("/api/orders/:id", orderHandler.Get)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
