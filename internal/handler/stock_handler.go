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

type StockHandler struct {
	stockService service.StockService
}

func NewStockHandler(stockService service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

func (h *StockHandler) RegisterRoutes(router *gin.RouterGroup) {
	stock := router.Group("/api/stock")
	{
		stock.GET("/movements", h.ListMovements)
		stock.POST("/movements", h.CreateMovement)
		stock.DELETE("/movements/:id", h.DeleteMovement)
		stock.GET("/balances", h.GetBalances)
		stock.GET("/balances/:productId", h.GetBalance)
	}
}

// ListMovements pages through the movement ledger
// @Summary      List stock movements
// @Description  Retrieves a paginated slice of the append-only movement ledger, newest first
// @Tags         stock
// @Produce      json
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Param        product_id  query     string  false  "Filter by product ID"
// @Param        from        query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to          query     string  false  "End date (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.MovementFilter{
		From: pagination.ParseDate(c, "from"),
		To:   pagination.ParseDate(c, "to"),
	}
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid product_id: "+raw))
			return
		}
		filter.ProductID = &id
	}

	movements, total, err := h.stockService.ListMovements(c.Request.Context(), params.Page, params.Limit, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"movements": movements,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}

// CreateMovement appends a manual ledger adjustment
// @Summary      Create manual movement
// @Description  Appends a manual IN or OUT adjustment to the movement ledger
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ManualMovementRequest  true  "Manual Movement Payload"
// @Success      201      {object}  response.Response{data=model.InventoryMovement}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/stock/movements [post]
func (h *StockHandler) CreateMovement(c *gin.Context) {
	var req service.ManualMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	movement, err := h.stockService.PostManual(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, movement))
}

// DeleteMovement removes a manual ledger adjustment
// @Summary      Delete manual movement
// @Description  Deletes a manual movement; movements owned by palletizations or deliveries are rejected
// @Tags         stock
// @Produce      json
// @Param        id   path      string  true  "Movement ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/stock/movements/{id} [delete]
func (h *StockHandler) DeleteMovement(c *gin.Context) {
	if err := h.stockService.DeleteManual(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Movement deleted successfully"))
}

// GetBalances derives current stock for every product
// @Summary      Get stock balances
// @Description  Derives per-product balances by summing the movement ledger
// @Tags         stock
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.ProductStockBalance}
// @Failure      500  {object}  response.Response
// @Router       /api/stock/balances [get]
func (h *StockHandler) GetBalances(c *gin.Context) {
	balances, err := h.stockService.Balances(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, balances))
}

// GetBalance derives current stock for one product
// @Summary      Get product balance
// @Description  Derives one product's balance by summing its ledger movements
// @Tags         stock
// @Produce      json
// @Param        productId  path      string  true  "Product ID"
// @Success      200        {object}  response.Response{data=object}
// @Failure      400        {object}  response.Response
// @Router       /api/stock/balances/{productId} [get]
func (h *StockHandler) GetBalance(c *gin.Context) {
	productID := c.Param("productId")
	balance, err := h.stockService.Balance(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"product_id": productID,
		"balance":    balance,
	}))
}
