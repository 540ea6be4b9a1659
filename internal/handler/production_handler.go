package handler

import (
	"net/http"

	"pavestock/internal/repository"
	"pavestock/internal/service"
	"pavestock/pkg/pagination"
	"pavestock/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductionHandler struct {
	productionService service.ProductionService
}

func NewProductionHandler(productionService service.ProductionService) *ProductionHandler {
	return &ProductionHandler{productionService: productionService}
}

func (h *ProductionHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api")
	{
		api.GET("/production-orders", h.List)
		api.POST("/production-orders/generate", h.Generate)
		api.POST("/production-orders/evaluate", h.Evaluate)
		api.POST("/production-orders/:id/cancel", h.Cancel)
		api.GET("/orders/:id/stock-check", h.Check)
		api.POST("/orders/:id/cancel-production", h.CancelForOrder)
	}
}

// Check computes advisory per-item production figures
// @Summary      Order stock check
// @Description  Computes available, reserved and suggested-to-produce figures per order item without writing anything
// @Tags         production
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=[]model.ItemStockCheck}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id}/stock-check [get]
func (h *ProductionHandler) Check(c *gin.Context) {
	checks, err := h.productionService.Check(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, checks))
}

// Generate commits an order to production
// @Summary      Generate production orders
// @Description  Creates one production order per order item and moves the order to IN_PRODUCTION; one-shot per order
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        payload  body      service.GenerateProductionRequest  true  "Generate Production Payload"
// @Success      201      {object}  response.Response{data=[]model.ProductionOrder}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/production-orders/generate [post]
func (h *ProductionHandler) Generate(c *gin.Context) {
	var req service.GenerateProductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	created, err := h.productionService.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// Evaluate runs the FIFO sweep on demand
// @Summary      Evaluate production orders
// @Description  Walks open production orders oldest first, completing those the current ledger stock satisfies
// @Tags         production
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/production-orders/evaluate [post]
func (h *ProductionHandler) Evaluate(c *gin.Context) {
	if err := h.productionService.Evaluate(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Evaluation completed"))
}

// Cancel releases one production reservation
// @Summary      Cancel production order
// @Description  Cancels an open production order without touching the ledger
// @Tags         production
// @Produce      json
// @Param        id   path      string  true  "Production Order ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/production-orders/{id}/cancel [post]
func (h *ProductionHandler) Cancel(c *gin.Context) {
	if err := h.productionService.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Production order cancelled successfully"))
}

// CancelForOrder rolls an order back out of production
// @Summary      Cancel order production
// @Description  Cancels every open production order on an order and reverts the order from IN_PRODUCTION to CONFIRMED
// @Tags         production
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id}/cancel-production [post]
func (h *ProductionHandler) CancelForOrder(c *gin.Context) {
	if err := h.productionService.CancelForOrder(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Production orders cancelled successfully"))
}

// List pages through production orders
// @Summary      List production orders
// @Description  Retrieves a paginated list of production orders with statuses freshly evaluated
// @Tags         production
// @Produce      json
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Param        status      query     string  false  "Filter by status"
// @Param        order_id    query     string  false  "Filter by order ID"
// @Param        product_id  query     string  false  "Filter by product ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      400  {object}  response.Response
// @Router       /api/production-orders [get]
func (h *ProductionHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.ProductionOrderFilter{Status: c.Query("status")}
	if raw := c.Query("order_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid order_id: "+raw))
			return
		}
		filter.OrderID = &id
	}
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid product_id: "+raw))
			return
		}
		filter.ProductID = &id
	}

	orders, total, err := h.productionService.List(c.Request.Context(), params.Page, params.Limit, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"production_orders": orders,
		"total":             total,
		"page":              params.Page,
		"limit":             params.Limit,
	}))
}
