package handler

import (
	"net/http"
	"testing"

	"github.com/vendra/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createProduct(t *testing.T, f *apiFixture, name string, stock int) dto.ProductResponse {
	t.Helper()

	w := f.do(t, http.MethodPost, "/api/v1/products", dto.CreateProductRequest{
		Name:  name,
		Price: "120.00",
		Stock: stock,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var product dto.ProductResponse
	decodeData(t, w, &product)
	return product
}

func TestCatalogHandler_CreateAndGetProduct(t *testing.T) {
	f := newAPIFixture(t)

	product := createProduct(t, f, "Mattress King", 5)
	assert.Equal(t, "Mattress King", product.Name)
	assert.Equal(t, "120.00", product.Price)
	assert.Equal(t, 5, product.Stock)

	w := f.do(t, http.MethodGet, "/api/v1/products/"+product.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got dto.ProductResponse
	decodeData(t, w, &got)
	assert.Equal(t, product.ID, got.ID)
}

func TestCatalogHandler_GetProduct_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/products/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogHandler_AdjustStock(t *testing.T) {
	f := newAPIFixture(t)
	product := createProduct(t, f, "Sofa Bed", 2)

	w := f.do(t, http.MethodPost, "/api/v1/products/"+product.ID+"/stock", dto.AdjustStockRequest{Delta: 10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got dto.ProductResponse
	decodeData(t, w, &got)
	assert.Equal(t, 12, got.Stock)

	t.Run("cannot go negative", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/products/"+product.ID+"/stock", dto.AdjustStockRequest{Delta: -20})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_INPUT", decodeError(t, w).Code)
	})
}

func TestCatalogHandler_CreateAndGetCustomer(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/customers", dto.CreateCustomerRequest{
		Name:  "Maria Lopez",
		Phone: "555-0101",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var customer dto.CustomerResponse
	decodeData(t, w, &customer)
	assert.Equal(t, "Maria Lopez", customer.Name)

	w = f.do(t, http.MethodGet, "/api/v1/customers/"+customer.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got dto.CustomerResponse
	decodeData(t, w, &got)
	assert.Equal(t, customer.ID, got.ID)
	assert.Equal(t, "555-0101", got.Phone)
}

func TestCatalogHandler_CreateCustomer_Validation(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/customers", map[string]any{"phone": "555-0101"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
