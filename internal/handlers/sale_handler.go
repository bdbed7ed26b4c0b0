package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"eggstore-system/internal/apperr"
	"eggstore-system/internal/services/sales"
	"eggstore-system/internal/utils"
)

type SaleHandler struct {
	sales *sales.Service
	log   *logrus.Logger
}

func NewSaleHandler(salesSvc *sales.Service, log *logrus.Logger) *SaleHandler {
	return &SaleHandler{sales: salesSvc, log: log}
}

type SaleLineRequest struct {
	ProductID uint   `json:"product_id"`
	Qty       int    `json:"qty"`
	UnitPrice string `json:"unit_price"`
}

type SaleRequest struct {
	CustomerID *uint             `json:"customer_id"`
	PaidAmount string            `json:"paid_amount"`
	Notes      string            `json:"notes"`
	Lines      []SaleLineRequest `json:"lines" binding:"required"`
}

type FastSellRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Qty       int  `json:"qty" binding:"required"`
}

func (h *SaleHandler) Create(c *gin.Context) {
	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	paid, err := utils.ParseAmount(req.PaidAmount)
	if err != nil {
		respondError(c, h.log, apperr.Validation("invalid paid amount %q", req.PaidAmount))
		return
	}

	lines := make([]sales.Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		price, err := utils.ParseAmount(l.UnitPrice)
		if err != nil {
			respondError(c, h.log, apperr.Validation("invalid unit price %q", l.UnitPrice))
			return
		}
		lines = append(lines, sales.Line{
			ProductID: l.ProductID,
			Qty:       l.Qty,
			UnitPrice: price,
		})
	}

	sale, err := h.sales.Settle(c.Request.Context(), sales.SettleInput{
		CustomerID: req.CustomerID,
		PaidAmount: paid,
		Notes:      req.Notes,
		Lines:      lines,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Sale recorded", sale))
}

func (h *SaleHandler) FastSell(c *gin.Context) {
	var req FastSellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	sale, err := h.sales.FastSell(c.Request.Context(), req.ProductID, req.Qty)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Sale recorded", sale))
}

func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.sales.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Sale retrieved", view))
}
