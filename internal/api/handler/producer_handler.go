package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

type ProducerHandler struct {
	service  ports.ProducerService
	currency string
}

func NewProducerHandler(service ports.ProducerService, currency string) *ProducerHandler {
	return &ProducerHandler{service: service, currency: currency}
}

// Products handles GET /v1/producer/products.
//
// @Summary      List my products
// @Tags         producer
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listProductsResponse
// @Router       /v1/producer/products [get]
func (h *ProducerHandler) Products(c echo.Context) error {
	_, identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	items, err := h.service.Products(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductList(items))
}

// Stats handles GET /v1/producer/stats.
//
// @Summary      Producer dashboard figures
// @Tags         producer
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  producerStatsResponse
// @Router       /v1/producer/stats [get]
func (h *ProducerHandler) Stats(c echo.Context) error {
	_, identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	st, err := h.service.Stats(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, producerStatsResponse{
		Products:   st.Products,
		TotalSales: st.TotalSales,
		Revenue:    money(st.Revenue),
		Currency:   h.currency,
	})
}

// Create handles POST /v1/producer/products.
//
// @Summary      Create a product
// @Tags         producer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product"
// @Success      201   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/producer/products [post]
func (h *ProducerHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	_, identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "price must be a decimal amount")
	}
	in := ports.CreateProductInput{
		ProducerID:  identity.ID,
		Title:       req.Title,
		Description: req.Description,
		Kind:        domain.ProductKind(req.Kind),
		Price:       price,
		Category:    strings.TrimSpace(req.Category),
		Tags:        req.Tags,
		ImageURL:    req.ImageURL,
	}
	if req.OriginalPrice != "" {
		op, err := decimal.NewFromString(req.OriginalPrice)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "original_price must be a decimal amount")
		}
		in.OriginalPrice = &op
	}

	p, err := h.service.CreateProduct(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

// SetActive handles PATCH /v1/producer/products/:id.
//
// @Summary      Publish or hide a product
// @Tags         producer
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string            true  "Product ID"
// @Param        body  body  setActiveRequest  true  "Visibility"
// @Success      204
// @Failure      404   {object}  errorResponse
// @Router       /v1/producer/products/{id} [patch]
func (h *ProducerHandler) SetActive(c echo.Context) error {
	var req setActiveRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	_, identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.SetProductActive(c.Request().Context(), identity.ID, c.Param("id"), *req.Active); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
