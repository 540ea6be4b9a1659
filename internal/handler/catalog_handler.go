package handler

import (
	"net/http"

	"pavestock/internal/service"
	"pavestock/pkg/pagination"
	"pavestock/pkg/response"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api")
	{
		api.GET("/products", h.ListProducts)
		api.POST("/products", h.CreateProduct)
		api.GET("/products/:id", h.GetProduct)
		api.GET("/production-runs", h.ListRuns)
		api.POST("/production-runs", h.CreateRun)
	}
}

// ListProducts pages through the product catalog
// @Summary      List products
// @Description  Retrieves a paginated list of catalog products with their recipes
// @Tags         catalog
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        search  query     string  false  "Search by product name"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	params := pagination.Parse(c)
	search := c.Query("search")

	products, total, err := h.catalogService.ListProducts(c.Request.Context(), params.Page, params.Limit, search)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// CreateProduct creates a catalog product
// @Summary      Create product
// @Description  Creates a product with its optional pallet and m2 recipes
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateProductRequest  true  "Create Product Payload"
// @Success      201      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Router       /api/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// GetProduct retrieves one product
// @Summary      Get product
// @Description  Retrieves a product by ID
// @Tags         catalog
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response{data=model.Product}
// @Failure      404  {object}  response.Response
// @Router       /api/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// ListRuns pages through recorded production runs
// @Summary      List production runs
// @Description  Retrieves a paginated list of recorded press runs, newest first
// @Tags         catalog
// @Produce      json
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Param        product_id  query     string  false  "Filter by product ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/production-runs [get]
func (h *CatalogHandler) ListRuns(c *gin.Context) {
	params := pagination.Parse(c)

	runs, total, err := h.catalogService.ListRuns(c.Request.Context(), params.Page, params.Limit, c.Query("product_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// CreateRun records a press run
// @Summary      Record production run
// @Description  Records one press run for a product on a given day; several runs per day are summed
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateProductionRunRequest  true  "Create Production Run Payload"
// @Success      201      {object}  response.Response{data=model.ProductionRun}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/production-runs [post]
func (h *CatalogHandler) CreateRun(c *gin.Context) {
	var req service.CreateProductionRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	run, err := h.catalogService.CreateRun(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, run))
}
