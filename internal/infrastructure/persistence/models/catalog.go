package models

import (
	"github.com/shopspring/decimal"
	"github.com/vendra/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for catalog.Product
type ProductModel struct {
	BaseModel
	Name     string          `gorm:"type:varchar(255);not null"`
	Price    decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Category string          `gorm:"type:varchar(100);index"`
	Stock    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for ProductModel
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts ProductModel to domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Price:      m.Price,
		Category:   m.Category,
		Stock:      m.Stock,
	}
}

// FromDomain populates ProductModel from domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.Price = p.Price
	m.Category = p.Category
	m.Stock = p.Stock
}
