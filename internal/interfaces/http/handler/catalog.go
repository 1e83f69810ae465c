package handler

import (
	"github.com/vendra/backend/internal/domain/catalog"
	"github.com/vendra/backend/internal/domain/partner"
	"github.com/vendra/backend/internal/domain/shared"
	"github.com/vendra/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CatalogHandler handles product and customer API endpoints. Products
// and customers are boundary collaborators of the ledger; this surface
// covers what sales recording and the low-stock hook need.
type CatalogHandler struct {
	BaseHandler
	products  catalog.Repository
	customers partner.Repository
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(products catalog.Repository, customers partner.Repository) *CatalogHandler {
	return &CatalogHandler{
		products:  products,
		customers: customers,
	}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("/:id", h.GetProduct)
		products.POST("/:id/stock", h.AdjustStock)
	}

	customers := rg.Group("/customers")
	{
		customers.POST("", h.CreateCustomer)
		customers.GET("/:id", h.GetCustomer)
	}
}

// CreateProduct adds a product to the catalog
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		h.BadRequest(c, "Invalid price")
		return
	}

	product := &catalog.Product{
		BaseEntity: shared.NewBaseEntity(),
		Name:       req.Name,
		Price:      price,
		Category:   req.Category,
		Stock:      req.Stock,
	}
	if err := h.products.Save(c.Request.Context(), product); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewProductResponse(product))
}

// GetProduct returns a product
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.products.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewProductResponse(product))
}

// AdjustStock changes a product's stock level by a delta
func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	// Load and save rather than the repo's in-place AdjustStock: a manual
	// adjustment is a restock as far as the low-stock re-arm is concerned,
	// so the product's updated_at must move forward
	product, err := h.products.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	product.Stock += req.Delta
	if product.Stock < 0 {
		h.ErrorWithCode(c, "INVALID_INPUT", "Stock cannot go negative")
		return
	}
	if err := h.products.Save(c.Request.Context(), product); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewProductResponse(product))
}

// CreateCustomer registers a customer
func (h *CatalogHandler) CreateCustomer(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	customer := &partner.Customer{
		BaseEntity: shared.NewBaseEntity(),
		Name:       req.Name,
		Phone:      req.Phone,
	}
	if err := h.customers.Save(c.Request.Context(), customer); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewCustomerResponse(customer))
}

// GetCustomer returns a customer
func (h *CatalogHandler) GetCustomer(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	customer, err := h.customers.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewCustomerResponse(customer))
}
