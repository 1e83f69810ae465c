package handler

import (
	"time"

	billingapp "github.com/vendra/backend/internal/application/billing"
	"github.com/vendra/backend/internal/domain/billing"
	"github.com/vendra/backend/internal/domain/shared/valueobject"
	"github.com/vendra/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BillingHandler handles sale and installment API endpoints
type BillingHandler struct {
	BaseHandler
	ledger *billingapp.InstallmentLedgerService
	now    func() time.Time
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(ledger *billingapp.InstallmentLedgerService) *BillingHandler {
	return &BillingHandler{
		ledger: ledger,
		now:    time.Now,
	}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.POST("", h.RecordSale)
		sales.GET("/:id", h.GetSale)
		sales.DELETE("/:id", h.DeleteSale)
		sales.POST("/:id/reschedule", h.RescheduleNextDueDate)
	}

	installments := rg.Group("/installments")
	{
		installments.POST("", h.CreateInstallment)
		installments.GET("/:id", h.GetInstallment)
		installments.POST("/:id/payments", h.RecordPayment)
		installments.POST("/:id/mark-paid", h.MarkAsPaid)
		installments.POST("/:id/revert", h.RevertPayment)
		installments.POST("/:id/late-fee", h.ApplyLateFee)
	}
}

// RecordSale creates a sale with its installment schedule
func (h *BillingHandler) RecordSale(c *gin.Context) {
	var req dto.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}
	total, err := valueobject.NewMoneyFromString(req.TotalAmount)
	if err != nil {
		h.BadRequest(c, "Invalid total amount")
		return
	}

	items := make(billing.SaleItems, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID")
			return
		}
		unitPrice, err := valueobject.NewMoneyFromString(item.UnitPrice)
		if err != nil {
			h.BadRequest(c, "Invalid unit price")
			return
		}
		items = append(items, billing.SaleItem{
			ProductID:   productID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice.Amount(),
		})
	}

	firstDue := h.now()
	if req.FirstDueDate != nil {
		firstDue = *req.FirstDueDate
	}

	sale, err := h.ledger.RecordSale(c.Request.Context(), billingapp.RecordSaleInput{
		CustomerID:           customerID,
		CustomerName:         req.CustomerName,
		TotalAmount:          total,
		PaymentType:          billing.PaymentType(req.PaymentType),
		NumberOfInstallments: req.NumberOfInstallments,
		AdvanceInstallments:  req.AdvanceInstallments,
		FirstDueDate:         firstDue,
		Items:                items,
		Notes:                req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	_, installments, err := h.ledger.GetSale(c.Request.Context(), sale.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewSaleResponse(sale, installments, h.now()))
}

// GetSale returns a sale with its installment schedule
func (h *BillingHandler) GetSale(c *gin.Context) {
	saleID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, installments, err := h.ledger.GetSale(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewSaleResponse(sale, installments, h.now()))
}

// DeleteSale removes a sale and its ledger rows
func (h *BillingHandler) DeleteSale(c *gin.Context) {
	saleID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	if err := h.ledger.DeleteSale(c.Request.Context(), saleID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RescheduleNextDueDate rolls the next unpaid installment forward a month
func (h *BillingHandler) RescheduleNextDueDate(c *gin.Context) {
	saleID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	next, err := h.ledger.RescheduleNextDueDate(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NextDueDateResponse{
		InstallmentID:     next.InstallmentID.String(),
		InstallmentNumber: next.InstallmentNumber,
		DueDate:           next.DueDate,
	})
}

// CreateInstallment appends an installment to an existing sale
func (h *BillingHandler) CreateInstallment(c *gin.Context) {
	var req dto.CreateInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}
	amount, err := valueobject.NewMoneyFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	inst, err := h.ledger.CreateInstallment(c.Request.Context(), saleID, req.InstallmentNumber, req.DueDate, amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewInstallmentResponse(inst, h.now()))
}

// GetInstallment returns a single installment
func (h *BillingHandler) GetInstallment(c *gin.Context) {
	installmentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}

	inst, err := h.ledger.GetInstallment(c.Request.Context(), installmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewInstallmentResponse(inst, h.now()))
}

// RecordPayment applies a payment to an installment
func (h *BillingHandler) RecordPayment(c *gin.Context) {
	installmentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	amount, err := valueobject.NewMoneyFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	inst, err := h.ledger.RecordPayment(c.Request.Context(), installmentID, amount,
		billing.PaymentMethod(req.PaymentMethod), req.PaymentReference)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewInstallmentResponse(inst, h.now()))
}

// MarkAsPaid settles the remaining balance of an installment
func (h *BillingHandler) MarkAsPaid(c *gin.Context) {
	installmentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}

	var req dto.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	inst, err := h.ledger.MarkAsPaid(c.Request.Context(), installmentID,
		billing.PaymentMethod(req.PaymentMethod), req.PaymentReference)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewInstallmentResponse(inst, h.now()))
}

// RevertPayment reverses a payment transaction on an installment
func (h *BillingHandler) RevertPayment(c *gin.Context) {
	installmentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}

	var req dto.RevertPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	transactionID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	inst, err := h.ledger.RevertPayment(c.Request.Context(), installmentID, transactionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewInstallmentResponse(inst, h.now()))
}

// ApplyLateFee adds a late fee to an installment
func (h *BillingHandler) ApplyLateFee(c *gin.Context) {
	installmentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}

	var req dto.ApplyLateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	fee, err := valueobject.NewMoneyFromString(req.Fee)
	if err != nil {
		h.BadRequest(c, "Invalid fee amount")
		return
	}

	inst, err := h.ledger.ApplyLateFee(c.Request.Context(), installmentID, fee)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewInstallmentResponse(inst, h.now()))
}
