package models

import (
	"github.com/vendra/backend/internal/domain/partner"
)

// CustomerModel is the persistence model for partner.Customer
type CustomerModel struct {
	BaseModel
	Name  string `gorm:"type:varchar(255);not null;index"`
	Phone string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for CustomerModel
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts CustomerModel to domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Phone:      m.Phone,
	}
}

// FromDomain populates CustomerModel from domain Customer
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.Phone = c.Phone
}
