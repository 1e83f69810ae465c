package dto

import (
	"time"

	"github.com/vendra/backend/internal/domain/catalog"
	"github.com/vendra/backend/internal/domain/partner"
)

// CreateProductRequest adds a product to the catalog
type CreateProductRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Price    string `json:"price" binding:"required,money"`
	Category string `json:"category" binding:"max=100"`
	Stock    int    `json:"stock" binding:"min=0"`
}

// AdjustStockRequest changes a product's stock by a delta
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// ProductResponse is the API shape of a product
type ProductResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Category  string    `json:"category,omitempty"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProductResponse converts a domain product
func NewProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:        product.ID.String(),
		Name:      product.Name,
		Price:     product.Price.StringFixed(2),
		Category:  product.Category,
		Stock:     product.Stock,
		CreatedAt: product.CreatedAt,
	}
}

// CreateCustomerRequest registers a customer
type CreateCustomerRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Phone string `json:"phone" binding:"max=30"`
}

// CustomerResponse is the API shape of a customer
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCustomerResponse converts a domain customer
func NewCustomerResponse(customer *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        customer.ID.String(),
		Name:      customer.Name,
		Phone:     customer.Phone,
		CreatedAt: customer.CreatedAt,
	}
}
