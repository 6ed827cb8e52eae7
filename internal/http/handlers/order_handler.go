// README: Order lookup handler for the ops surface.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wajba/internal/modules/registry"
	"wajba/internal/types"
)

type OrderHandler struct {
	registry *registry.Service
}

func NewOrderHandler(svc *registry.Service) *OrderHandler {
	return &OrderHandler{registry: svc}
}

func (h *OrderHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	o, err := h.registry.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeRegistryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_id":      o.ID,
		"seq_no":        o.SequenceNo,
		"customer_id":   o.CustomerID,
		"restaurant_id": o.RestaurantID,
		"status":        o.Status,
		"total":         o.TotalPrice.Amount,
		"currency":      o.TotalPrice.Currency,
		"created_at":    o.CreatedAt,
	})
}
