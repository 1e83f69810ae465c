package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vendra/backend/internal/domain/billing"
)

// SaleModel is the persistence model for billing.Sale
type SaleModel struct {
	AggregateModel
	CustomerID           uuid.UUID         `gorm:"type:uuid;not null;index"`
	CustomerName         string            `gorm:"type:varchar(255);not null"`
	TotalAmount          decimal.Decimal   `gorm:"type:decimal(20,2);not null"`
	PaymentType          string            `gorm:"type:varchar(20);not null"`
	PaymentStatus        string            `gorm:"type:varchar(20);not null;index"`
	NumberOfInstallments int               `gorm:"not null;default:0"`
	InstallmentAmount    decimal.Decimal   `gorm:"type:decimal(20,2);not null;default:0"`
	AdvanceInstallments  int               `gorm:"not null;default:0"`
	Items                billing.SaleItems `gorm:"type:jsonb"`
	Notes                string            `gorm:"type:text"`
}

// TableName returns the table name for SaleModel
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts SaleModel to domain Sale
func (m *SaleModel) ToDomain() *billing.Sale {
	sale := &billing.Sale{
		CustomerID:           m.CustomerID,
		CustomerName:         m.CustomerName,
		TotalAmount:          m.TotalAmount,
		PaymentType:          billing.PaymentType(m.PaymentType),
		PaymentStatus:        billing.SalePaymentStatus(m.PaymentStatus),
		NumberOfInstallments: m.NumberOfInstallments,
		InstallmentAmount:    m.InstallmentAmount,
		AdvanceInstallments:  m.AdvanceInstallments,
		Items:                m.Items,
		Notes:                m.Notes,
	}
	m.PopulateAggregateRoot(&sale.BaseAggregateRoot)
	return sale
}

// FromDomain populates SaleModel from domain Sale
func (m *SaleModel) FromDomain(s *billing.Sale) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.CustomerID = s.CustomerID
	m.CustomerName = s.CustomerName
	m.TotalAmount = s.TotalAmount
	m.PaymentType = string(s.PaymentType)
	m.PaymentStatus = string(s.PaymentStatus)
	m.NumberOfInstallments = s.NumberOfInstallments
	m.InstallmentAmount = s.InstallmentAmount
	m.AdvanceInstallments = s.AdvanceInstallments
	m.Items = s.Items
	m.Notes = s.Notes
}

// InstallmentModel is the persistence model for billing.Installment
type InstallmentModel struct {
	AggregateModel
	SaleID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	InstallmentNumber int             `gorm:"not null"`
	DueDate           time.Time       `gorm:"not null;index"`
	Amount            decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	PaidAmount        decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	Balance           decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Status            string          `gorm:"type:varchar(20);not null;index"`
	PaidDate          *time.Time
	LateFee           decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	LateFeeApplied    bool            `gorm:"not null;default:false"`
	Notes             string          `gorm:"type:text"`
}

// TableName returns the table name for InstallmentModel
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts InstallmentModel to domain Installment
func (m *InstallmentModel) ToDomain() *billing.Installment {
	inst := &billing.Installment{
		SaleID:            m.SaleID,
		InstallmentNumber: m.InstallmentNumber,
		DueDate:           m.DueDate,
		Amount:            m.Amount,
		PaidAmount:        m.PaidAmount,
		Balance:           m.Balance,
		Status:            billing.InstallmentStatus(m.Status),
		PaidDate:          m.PaidDate,
		LateFee:           m.LateFee,
		LateFeeApplied:    m.LateFeeApplied,
		Notes:             m.Notes,
	}
	m.PopulateAggregateRoot(&inst.BaseAggregateRoot)
	return inst
}

// FromDomain populates InstallmentModel from domain Installment
func (m *InstallmentModel) FromDomain(i *billing.Installment) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.SaleID = i.SaleID
	m.InstallmentNumber = i.InstallmentNumber
	m.DueDate = i.DueDate
	m.Amount = i.Amount
	m.PaidAmount = i.PaidAmount
	m.Balance = i.Balance
	m.Status = string(i.Status)
	m.PaidDate = i.PaidDate
	m.LateFee = i.LateFee
	m.LateFeeApplied = i.LateFeeApplied
	m.Notes = i.Notes
}

// PaymentTransactionModel is the persistence model for billing.PaymentTransaction
type PaymentTransactionModel struct {
	AggregateModel
	SaleID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	InstallmentID    *uuid.UUID      `gorm:"type:uuid;index"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	PaymentMethod    string          `gorm:"type:varchar(20);not null"`
	PaymentReference string          `gorm:"type:varchar(100)"`
	TransactionDate  time.Time       `gorm:"not null;index"`
	Status           string          `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for PaymentTransactionModel
func (PaymentTransactionModel) TableName() string {
	return "payment_transactions"
}

// ToDomain converts PaymentTransactionModel to domain PaymentTransaction
func (m *PaymentTransactionModel) ToDomain() *billing.PaymentTransaction {
	txn := &billing.PaymentTransaction{
		SaleID:           m.SaleID,
		InstallmentID:    m.InstallmentID,
		Amount:           m.Amount,
		PaymentMethod:    billing.PaymentMethod(m.PaymentMethod),
		PaymentReference: m.PaymentReference,
		TransactionDate:  m.TransactionDate,
		Status:           billing.TransactionStatus(m.Status),
	}
	m.PopulateAggregateRoot(&txn.BaseAggregateRoot)
	return txn
}

// FromDomain populates PaymentTransactionModel from domain PaymentTransaction
func (m *PaymentTransactionModel) FromDomain(t *billing.PaymentTransaction) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.SaleID = t.SaleID
	m.InstallmentID = t.InstallmentID
	m.Amount = t.Amount
	m.PaymentMethod = string(t.PaymentMethod)
	m.PaymentReference = t.PaymentReference
	m.TransactionDate = t.TransactionDate
	m.Status = string(t.Status)
}
