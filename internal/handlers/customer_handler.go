package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"eggstore-system/internal/apperr"
	"eggstore-system/internal/services/inventory"
	"eggstore-system/internal/services/ledger"
	"eggstore-system/internal/utils"
)

type CustomerHandler struct {
	inventory *inventory.Service
	ledger    *ledger.Service
	log       *logrus.Logger
}

func NewCustomerHandler(inventorySvc *inventory.Service, ledgerSvc *ledger.Service, log *logrus.Logger) *CustomerHandler {
	return &CustomerHandler{inventory: inventorySvc, ledger: ledgerSvc, log: log}
}

type CustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type TransactionRequest struct {
	CustomerID  uint   `json:"customer_id" binding:"required"`
	Type        string `json:"transaction_type" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
}

func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.inventory.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Customers retrieved", customers))
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	customer, err := h.inventory.CreateCustomer(c.Request.Context(), inventory.CustomerInput{
		Name:  req.Name,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Customer created", customer))
}

func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	customer, err := h.inventory.UpdateCustomer(c.Request.Context(), id, inventory.CustomerInput{
		Name:  req.Name,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Customer updated", customer))
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.inventory.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Customer deleted", nil))
}

func (h *CustomerHandler) Ledger(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.ledger.CustomerLedger(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Ledger retrieved", view))
}

func (h *CustomerHandler) AddTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		respondError(c, h.log, apperr.Validation("invalid amount %q", req.Amount))
		return
	}

	description := req.Description
	if description == "" {
		description = "Manual " + req.Type + " entry"
	}

	txn, err := h.ledger.RecordTransaction(c.Request.Context(), ledger.RecordInput{
		CustomerID:  req.CustomerID,
		Type:        req.Type,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Transaction recorded", txn))
}

func (h *CustomerHandler) AllDebts(c *gin.Context) {
	debtors, err := h.ledger.ListDebtors(c.Request.Context(), 0)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	total := "0"
	if len(debtors) > 0 {
		sum := debtors[0].Balance
		for _, d := range debtors[1:] {
			sum = sum.Add(d.Balance)
		}
		total = sum.String()
	}
	c.JSON(http.StatusOK, successWithMetaResponse("Debtors retrieved", debtors, gin.H{"total_unpaid": total}))
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid id parameter"))
		return 0, false
	}
	return uint(id), true
}
