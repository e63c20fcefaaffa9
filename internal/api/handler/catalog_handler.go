package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

type CatalogHandler struct {
	service ports.CatalogService
}

func NewCatalogHandler(service ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// List handles GET /v1/products.
//
// @Summary      List active products
// @Tags         catalog
// @Produce      json
// @Param        kind      query     string  false  "course, ebook, digital or physical"
// @Param        category  query     string  false  "Category"
// @Param        q         query     string  false  "Partial title match"
// @Param        limit     query     int     false  "Maximum number of products"
// @Success      200       {object}  listProductsResponse
// @Failure      400       {object}  errorResponse
// @Router       /v1/products [get]
func (h *CatalogHandler) List(c echo.Context) error {
	filter := ports.ProductFilter{
		Kind:     domain.ProductKind(c.QueryParam("kind")),
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("q"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		filter.Limit = n
	}

	items, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductList(items))
}

// Get handles GET /v1/products/:id.
//
// @Summary      Get a product
// @Tags         catalog
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  productResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/products/{id} [get]
func (h *CatalogHandler) Get(c echo.Context) error {
	p, err := h.service.Product(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// Outline handles GET /v1/products/:id/outline. Video URLs are only present
// for previews and for viewers entitled to the course.
//
// @Summary      Course outline
// @Tags         catalog
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  domain.CourseOutline
// @Failure      404  {object}  errorResponse
// @Router       /v1/products/{id}/outline [get]
func (h *CatalogHandler) Outline(c echo.Context) error {
	outline, err := h.service.Outline(c.Request().Context(), c.Param("id"), viewerID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, outline)
}
