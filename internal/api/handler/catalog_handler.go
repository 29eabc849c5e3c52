package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atelier-boutique/storefront/internal/api/metrics"
	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

// CatalogHandler serves the public catalog and the back-office stock views.
type CatalogHandler struct {
	catalog   ports.CatalogService
	inventory ports.InventoryService
}

func NewCatalogHandler(catalog ports.CatalogService, inventory ports.InventoryService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, inventory: inventory}
}

type inventoryItemResponse struct {
	domain.Product
	LowStock bool `json:"low_stock"`
}

type inventoryResponse struct {
	Threshold     int                     `json:"threshold"`
	LowStockCount int                     `json:"low_stock_count"`
	Items         []inventoryItemResponse `json:"items"`
}

type stockRequest struct {
	Stock *int `json:"stock" validate:"required,min=0"`
}

// List handles GET /api/produits.
//
// @Summary      List active products
// @Tags         catalog
// @Produce      json
// @Param        category    query     string  false  "Category slug"
// @Param        collection  query     string  false  "Collection slug"
// @Param        q           query     string  false  "Free-text search on name and description"
// @Param        sort        query     string  false  "newest (default), price_asc, price_desc, name"
// @Param        page        query     int     false  "Page (default 1)"
// @Param        limit       query     int     false  "Page size (default 12, max 100)"
// @Success      200         {object}  ports.ProductPage
// @Failure      400         {object}  map[string]string
// @Router       /api/produits [get]
func (h *CatalogHandler) List(c echo.Context) error {
	page, limit, err := pageQuery(c)
	if err != nil {
		return err
	}
	res, err := h.catalog.List(c.Request().Context(), ports.CatalogQuery{
		Category:   c.QueryParam("category"),
		Collection: c.QueryParam("collection"),
		Search:     c.QueryParam("q"),
		Sort:       c.QueryParam("sort"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return err
	}
	res.Data = nonNil(res.Data)
	return c.JSON(http.StatusOK, res)
}

// Get handles GET /api/produits/:slug.
//
// @Summary      Product detail
// @Tags         catalog
// @Produce      json
// @Param        slug  path      string  true  "Product slug"
// @Success      200   {object}  domain.Product
// @Failure      404   {object}  map[string]string
// @Router       /api/produits/{slug} [get]
func (h *CatalogHandler) Get(c echo.Context) error {
	p, err := h.catalog.Get(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Stock handles GET /admin/stocks.
//
// @Summary      Stock dashboard
// @Tags         admin
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  inventoryResponse
// @Failure      302  "Redirected by the route gate"
// @Router       /admin/stocks [get]
func (h *CatalogHandler) Stock(c echo.Context) error {
	ov, err := h.inventory.Overview(c.Request().Context(), viewer(c))
	if err != nil {
		return err
	}
	items := make([]inventoryItemResponse, 0, len(ov.Items))
	for _, it := range ov.Items {
		items = append(items, inventoryItemResponse{Product: it.Product, LowStock: it.LowStock})
	}
	return c.JSON(http.StatusOK, inventoryResponse{
		Threshold:     ov.Threshold,
		LowStockCount: ov.LowStockCount,
		Items:         items,
	})
}

// SetStock handles PATCH /api/admin/produits/:id/stock.
//
// @Summary      Set the stock of a product
// @Description  Invalidates the catalog cache for the product and raises a low-stock notification at or below the threshold.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      string        true  "Product id"
// @Param        body  body      stockRequest  true  "New stock"
// @Success      200   {object}  domain.Product
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/admin/produits/{id}/stock [patch]
func (h *CatalogHandler) SetStock(c echo.Context) error {
	var req stockRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.inventory.SetStock(c.Request().Context(), viewer(c), c.Param("id"), *req.Stock)
	if err != nil {
		return err
	}
	metrics.StockUpdatesTotal.Inc()
	return c.JSON(http.StatusOK, p)
}
