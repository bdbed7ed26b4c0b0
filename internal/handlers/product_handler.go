package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"eggstore-system/config"
	"eggstore-system/internal/apperr"
	"eggstore-system/internal/middleware"
	"eggstore-system/internal/services/inventory"
	"eggstore-system/internal/utils"
)

type ProductHandler struct {
	inventory *inventory.Service
	store     config.StoreConfig
	log       *logrus.Logger
}

func NewProductHandler(inventorySvc *inventory.Service, store config.StoreConfig, log *logrus.Logger) *ProductHandler {
	return &ProductHandler{inventory: inventorySvc, store: store, log: log}
}

type ProductRequest struct {
	Name           string `json:"name" binding:"required"`
	Stock          int    `json:"stock"`
	PriceWholesale string `json:"price_wholesale"`
	PriceRetail    string `json:"price_retail"`
	Notes          string `json:"notes"`
}

type UnpackRequest struct {
	SourceProductID uint   `json:"source_product_id" binding:"required"`
	Quantity        int    `json:"quantity" binding:"required"`
	PiecesPerUnit   int    `json:"pieces_per_unit"`
	PriceWholesale  string `json:"new_price_wholesale" binding:"required"`
	PriceRetail     string `json:"new_price_retail" binding:"required"`
}

type WriteOffRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Notes     string `json:"notes"`
}

func (h *ProductHandler) productInput(c *gin.Context, req ProductRequest) (inventory.ProductInput, bool) {
	wholesale, err := utils.ParseAmount(req.PriceWholesale)
	if err != nil {
		respondError(c, h.log, apperr.Validation("invalid wholesale price %q", req.PriceWholesale))
		return inventory.ProductInput{}, false
	}
	retail, err := utils.ParseAmount(req.PriceRetail)
	if err != nil {
		respondError(c, h.log, apperr.Validation("invalid retail price %q", req.PriceRetail))
		return inventory.ProductInput{}, false
	}
	return inventory.ProductInput{
		Name:           req.Name,
		Stock:          req.Stock,
		PriceWholesale: wholesale,
		PriceRetail:    retail,
		Notes:          req.Notes,
	}, true
}

func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.inventory.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Products retrieved", products))
}

func (h *ProductHandler) Inventory(c *gin.Context) {
	products, err := h.inventory.ListInventory(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Inventory retrieved", products))
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	in, ok := h.productInput(c, req)
	if !ok {
		return
	}
	product, err := h.inventory.CreateProduct(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Product created", product))
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	in, ok := h.productInput(c, req)
	if !ok {
		return
	}
	product, err := h.inventory.UpdateProduct(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Product updated", product))
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.inventory.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Product deleted", nil))
}

func (h *ProductHandler) Unpack(c *gin.Context) {
	var req UnpackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	wholesale, err := utils.ParseAmount(req.PriceWholesale)
	if err != nil {
		respondError(c, h.log, apperr.Validation("invalid wholesale price %q", req.PriceWholesale))
		return
	}
	retail, err := utils.ParseAmount(req.PriceRetail)
	if err != nil {
		respondError(c, h.log, apperr.Validation("invalid retail price %q", req.PriceRetail))
		return
	}

	pieces := req.PiecesPerUnit
	if pieces == 0 {
		pieces = h.store.DefaultPieces
	}

	result, err := h.inventory.Unpack(c.Request.Context(), req.SourceProductID, req.Quantity, pieces, wholesale, retail)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Product unpacked", result))
}

// WriteOff is open to sellers too: damaged trays are discovered at the
// counter.
func (h *ProductHandler) WriteOff(c *gin.Context) {
	var req WriteOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	notes := req.Notes
	if username := c.GetString(middleware.ContextUsername); username != "" {
		if notes != "" {
			notes += " "
		}
		notes += "(removed by " + username + ")"
	}

	record, err := h.inventory.WriteOff(c.Request.Context(), req.ProductID, req.Quantity, notes)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Damaged stock recorded", record))
}
