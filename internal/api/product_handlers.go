package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stockpilot-io/stockpilot/internal/models"
	"github.com/stockpilot-io/stockpilot/internal/store"
)

type productRequest struct {
	Name         string   `json:"name"`
	InternalCode string   `json:"internal_code"`
	Barcode      string   `json:"barcode"`
	Description  string   `json:"description"`
	Quantity     int      `json:"quantity"`
	Location     string   `json:"location"`
	Category     string   `json:"category"`
	Price        *float64 `json:"price"`
	Supplier     string   `json:"supplier"`
}

func (req *productRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if req.Quantity < 0 {
		return "quantity cannot be negative"
	}
	if req.Price != nil && *req.Price < 0 {
		return "price cannot be negative"
	}
	return ""
}

func (req *productRequest) apply(p *models.Product) {
	p.Name = strings.TrimSpace(req.Name)
	p.InternalCode = strings.TrimSpace(req.InternalCode)
	p.Barcode = strings.TrimSpace(req.Barcode)
	p.Description = req.Description
	p.Quantity = req.Quantity
	p.Location = req.Location
	p.Category = req.Category
	p.Price = req.Price
	p.Supplier = req.Supplier
}

func productID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (a *Api) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, kindValidation, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, kindValidation, msg)
		return
	}

	product := &models.Product{PublicID: uuid.NewString()}
	req.apply(product)

	err := a.Store.CreateProduct(product)
	if errors.Is(err, store.ErrConflict) {
		respondError(w, http.StatusConflict, kindConflict, "internal code or barcode already in use")
		return
	}
	if err != nil {
		respondStorageError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

func (a *Api) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := a.Store.ListProducts()
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (a *Api) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, kindValidation, "invalid product id")
		return
	}

	product, err := a.Store.GetProduct(id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, kindNotFound, "product not found")
		return
	}
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (a *Api) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, kindValidation, "invalid product id")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, kindValidation, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, kindValidation, msg)
		return
	}

	product, err := a.Store.GetProduct(id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, kindNotFound, "product not found")
		return
	}
	if err != nil {
		respondStorageError(w, err)
		return
	}

	req.apply(product)
	err = a.Store.UpdateProduct(product)
	if errors.Is(err, store.ErrConflict) {
		respondError(w, http.StatusConflict, kindConflict, "internal code or barcode already in use")
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, kindNotFound, "product not found")
		return
	}
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (a *Api) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, kindValidation, "invalid product id")
		return
	}

	err := a.Store.DeleteProduct(id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, kindNotFound, "product not found")
		return
	}
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
