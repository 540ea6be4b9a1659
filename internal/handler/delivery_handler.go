package handler

import (
	"net/http"

	"pavestock/internal/service"
	"pavestock/pkg/pagination"
	"pavestock/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DeliveryHandler struct {
	deliveryService service.DeliveryService
}

func NewDeliveryHandler(deliveryService service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveryService: deliveryService}
}

func (h *DeliveryHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api")
	{
		api.GET("/deliveries", h.List)
		api.POST("/deliveries", h.Create)
		api.PUT("/deliveries/:id/status", h.UpdateStatus)
		api.DELETE("/deliveries/:id", h.Delete)
		api.GET("/orders/:id/delivery-check", h.Check)
	}
}

type updateDeliveryStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=IN_TRANSIT DELIVERED CANCELLED"`
}

// Check computes advisory per-item delivery figures
// @Summary      Order delivery check
// @Description  Computes delivered, remaining and available-stock figures per order item without writing anything
// @Tags         deliveries
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=[]model.ItemDeliveryCheck}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id}/delivery-check [get]
func (h *DeliveryHandler) Check(c *gin.Context) {
	checks, err := h.deliveryService.Check(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, checks))
}

// Create loads a delivery against an order
// @Summary      Create delivery
// @Description  Creates a LOADING delivery, consuming ledger stock per item; rejected whole if any line exceeds remaining or stock
// @Tags         deliveries
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateDeliveryRequest  true  "Create Delivery Payload"
// @Success      201      {object}  response.Response{data=model.Delivery}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/deliveries [post]
func (h *DeliveryHandler) Create(c *gin.Context) {
	var req service.CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	delivery, err := h.deliveryService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, delivery))
}

// UpdateStatus advances or cancels a delivery
// @Summary      Update delivery status
// @Description  Moves a delivery along LOADING, IN_TRANSIT, DELIVERED; cancellation reverses its stock movements
// @Tags         deliveries
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Delivery ID"
// @Param        payload  body      updateDeliveryStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=model.Delivery}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/deliveries/{id}/status [put]
func (h *DeliveryHandler) UpdateStatus(c *gin.Context) {
	var req updateDeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	delivery, err := h.deliveryService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, delivery))
}

// Delete removes a LOADING delivery
// @Summary      Delete delivery
// @Description  Deletes a LOADING delivery, reversing its stock movements first
// @Tags         deliveries
// @Produce      json
// @Param        id   path      string  true  "Delivery ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/deliveries/{id} [delete]
func (h *DeliveryHandler) Delete(c *gin.Context) {
	if err := h.deliveryService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Delivery deleted successfully"))
}

// List pages through deliveries
// @Summary      List deliveries
// @Description  Retrieves a paginated list of deliveries, newest first
// @Tags         deliveries
// @Produce      json
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Param        order_id  query     string  false  "Filter by order ID"
// @Param        status    query     string  false  "Filter by status"
// @Success      200  {object}  response.Response{data=object}
// @Failure      400  {object}  response.Response
// @Router       /api/deliveries [get]
func (h *DeliveryHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	var orderID *uuid.UUID
	if raw := c.Query("order_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid order_id: "+raw))
			return
		}
		orderID = &id
	}

	deliveries, total, err := h.deliveryService.List(c.Request.Context(), params.Page, params.Limit, orderID, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"deliveries": deliveries,
		"total":      total,
		"page":       params.Page,
		"limit":      params.Limit,
	}))
}
