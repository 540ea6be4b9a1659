package handler

import (
	"net/http"

	"pavestock/internal/service"
	"pavestock/pkg/pagination"
	"pavestock/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PalletizationHandler struct {
	palletizationService service.PalletizationService
}

func NewPalletizationHandler(palletizationService service.PalletizationService) *PalletizationHandler {
	return &PalletizationHandler{palletizationService: palletizationService}
}

func (h *PalletizationHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api")
	{
		api.GET("/palletizations", h.List)
		api.GET("/palletizations/pending", h.Pending)
		api.POST("/palletizations", h.Save)
		api.DELETE("/palletizations/:id", h.Delete)
		api.GET("/loose-pieces", h.LooseBalances)
		api.POST("/loose-pieces/:productId/form-pallet", h.FormPallet)
	}
}

// Pending lists production days awaiting reconciliation
// @Summary      Pending palletizations
// @Description  Lists (product, day) pairs with recorded output and no reconciliation yet, split by recipe availability
// @Tags         palletization
// @Produce      json
// @Success      200  {object}  response.Response{data=service.PendingPalletizations}
// @Failure      500  {object}  response.Response
// @Router       /api/palletizations/pending [get]
func (h *PalletizationHandler) Pending(c *gin.Context) {
	pending, err := h.palletizationService.Pending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pending))
}

// Save reconciles one production day
// @Summary      Save palletization
// @Description  Reconciles a production day against the physical count, posting real pieces to the ledger and carrying loose pieces forward
// @Tags         palletization
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SavePalletizationRequest  true  "Save Palletization Payload"
// @Success      201      {object}  response.Response{data=model.Palletization}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/palletizations [post]
func (h *PalletizationHandler) Save(c *gin.Context) {
	var req service.SavePalletizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	palletization, err := h.palletizationService.Save(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, palletization))
}

// Delete reverses a palletization
// @Summary      Delete palletization
// @Description  Deletes a palletization, removing its ledger movement and restoring the prior loose balance
// @Tags         palletization
// @Produce      json
// @Param        id   path      string  true  "Palletization ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/palletizations/{id} [delete]
func (h *PalletizationHandler) Delete(c *gin.Context) {
	if err := h.palletizationService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Palletization deleted successfully"))
}

// List pages through saved palletizations
// @Summary      List palletizations
// @Description  Retrieves a paginated list of saved palletizations, newest production date first
// @Tags         palletization
// @Produce      json
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Param        product_id  query     string  false  "Filter by product ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      400  {object}  response.Response
// @Router       /api/palletizations [get]
func (h *PalletizationHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	var productID *uuid.UUID
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid product_id: "+raw))
			return
		}
		productID = &id
	}

	palletizations, total, err := h.palletizationService.List(c.Request.Context(), params.Page, params.Limit, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"palletizations": palletizations,
		"total":          total,
		"page":           params.Page,
		"limit":          params.Limit,
	}))
}

// LooseBalances lists per-product loose piece balances
// @Summary      Loose piece balances
// @Description  Lists the loose pieces carried outside the pallet ledger per product
// @Tags         palletization
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.LoosePiecesBalance}
// @Failure      500  {object}  response.Response
// @Router       /api/loose-pieces [get]
func (h *PalletizationHandler) LooseBalances(c *gin.Context) {
	balances, err := h.palletizationService.LooseBalances(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, balances))
}

// FormPallet converts loose pieces into one ledger pallet
// @Summary      Form pallet from loose pieces
// @Description  Consumes one pallet's worth of loose pieces and posts the pallet to the ledger
// @Tags         palletization
// @Produce      json
// @Param        productId  path      string  true  "Product ID"
// @Success      201        {object}  response.Response{data=model.InventoryMovement}
// @Failure      404        {object}  response.Response
// @Failure      422        {object}  response.Response
// @Router       /api/loose-pieces/{productId}/form-pallet [post]
func (h *PalletizationHandler) FormPallet(c *gin.Context) {
	movement, err := h.palletizationService.FormPalletFromLoose(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, movement))
}
