package handler

import (
	shopapp "github.com/duka/backend/internal/application/shop"
	"github.com/gin-gonic/gin"
)

// ShopHandler handles shop endpoints
type ShopHandler struct {
	BaseHandler
	shopService *shopapp.ShopService
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(shopService *shopapp.ShopService) *ShopHandler {
	return &ShopHandler{shopService: shopService}
}

// List handles GET /shops
func (h *ShopHandler) List(c *gin.Context) {
	shops, err := h.shopService.List(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, shops)
}

// Create handles POST /shops. Each shop type can be created once.
func (h *ShopHandler) Create(c *gin.Context) {
	var req shopapp.CreateShopRequest
	if !h.bindJSON(c, &req) {
		return
	}
	shop, err := h.shopService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, shop)
}
