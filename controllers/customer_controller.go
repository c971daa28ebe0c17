package controllers

import (
	"net/http"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

type CustomerController struct {
	CustomerSvc *services.CustomerService
}

func NewCustomerController(svc *services.CustomerService) *CustomerController {
	return &CustomerController{CustomerSvc: svc}
}

// GetCustomers (GET /api/customers?search=)
func (ctrl *CustomerController) GetCustomers(c *gin.Context) {
	page, perPage := services.NormalizePage(queryInt(c, "page", 1), queryInt(c, "per_page", 15))
	customers, total, err := ctrl.CustomerSvc.List(c.Request.Context(), c.Query("search"), page, perPage)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Paginated(c, http.StatusOK, customers, page, perPage, total)
}

func (ctrl *CustomerController) GetCustomer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	customer, err := ctrl.CustomerSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.Success(c, http.StatusOK, customer)
}

// CreateCustomer (POST /api/customers)
func (ctrl *CustomerController) CreateCustomer(c *gin.Context) {
	var payload services.CustomerInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	customer, err := ctrl.CustomerSvc.Create(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusCreated, "Customer created", customer)
}

func (ctrl *CustomerController) UpdateCustomer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var payload services.CustomerInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}
	customer, err := ctrl.CustomerSvc.Update(c.Request.Context(), id, payload)
	if err != nil {
		respondError(c, err, ErrorFields{})
		return
	}
	utils.SuccessWithMessage(c, http.StatusOK, "Customer updated", customer)
}
