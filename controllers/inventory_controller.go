package controllers

import (
	"net/http"
	"strings"

	"hotel-pms/models"
	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

// InventoryController exposes the product catalog, branch stock and the
// kardex ledger.
type InventoryController struct {
	KardexSvc  *services.KardexService
	ProductSvc *services.ProductService
}

func NewInventoryController(kardex *services.KardexService, products *services.ProductService) *InventoryController {
	return &InventoryController{KardexSvc: kardex, ProductSvc: products}
}

// GetKardex (GET /api/kardex)
func (ctrl *InventoryController) GetKardex(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	from, ok := queryTime(c, "date_from")
	if !ok {
		return
	}
	to, ok := queryTime(c, "date_to")
	if !ok {
		return
	}
	page, perPage := services.NormalizePage(queryInt(c, "page", 1), queryInt(c, "per_page", 15))
	entries, total, err := ctrl.KardexSvc.ListMovements(c.Request.Context(), actor, services.MovementFilter{
		ProductID: queryUint(c, "product_id"),
		Type:      models.MovementType(strings.TrimSpace(c.Query("movement_type"))),
		Category:  models.MovementCategory(strings.TrimSpace(c.Query("movement_category"))),
		From:      from,
		To:        to,
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Paginated(c, http.StatusOK, entries, page, perPage, total)
}

// RegisterMovement (POST /api/kardex/entries)
func (ctrl *InventoryController) RegisterMovement(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload services.ManualMovementInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	entry, err := ctrl.KardexSvc.RegisterMovement(c.Request.Context(), actor, payload)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusCreated, "Movement registered", entry)
}

// GetStock (GET /api/stock)
func (ctrl *InventoryController) GetStock(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	stock, err := ctrl.KardexSvc.ListStock(c.Request.Context(), actor, queryUint(c, "product_id"))
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, stock)
}

func (ctrl *InventoryController) GetProducts(c *gin.Context) {
	products, err := ctrl.ProductSvc.List(c.Request.Context(), c.Query("search"), c.Query("all") != "true")
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, products)
}

func (ctrl *InventoryController) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := ctrl.ProductSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, p)
}

func (ctrl *InventoryController) CreateProduct(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload services.ProductInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	p, err := ctrl.ProductSvc.Create(c.Request.Context(), actor, payload)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusCreated, "Product created", p)
}

func (ctrl *InventoryController) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload services.ProductInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	p, err := ctrl.ProductSvc.Update(c.Request.Context(), id, payload)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Product updated", p)
}
