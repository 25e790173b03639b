package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	procurementapp "github.com/procurement/backend/internal/application/procurement"
	"github.com/shopspring/decimal"
)

// PurchaseOrderService manages purchase orders raised against LOAs
type PurchaseOrderService interface {
	CreatePurchaseOrder(ctx context.Context, loaID string, req procurementapp.CreatePurchaseOrderRequest) (*procurementapp.PurchaseOrderResponse, error)
	GetPurchaseOrder(ctx context.Context, id string) (*procurementapp.PurchaseOrderResponse, error)
	ListPurchaseOrders(ctx context.Context, loaID string) ([]procurementapp.PurchaseOrderResponse, error)
	DeletePurchaseOrder(ctx context.Context, id string) error
}

// PurchaseOrderHandler handles purchase order API endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orders PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orders PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orders: orders}
}

// CreatePurchaseOrderRequest is the JSON body for raising a purchase order
type CreatePurchaseOrderRequest struct {
	PoNumber    string          `json:"po_number" binding:"required,max=50"`
	VendorName  string          `json:"vendor_name" binding:"required,max=200"`
	PoValue     decimal.Decimal `json:"po_value"`
	Description string          `json:"description" binding:"max=1000"`
}

// Create raises a purchase order under an LOA
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var body CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindError(c, err)
		return
	}

	po, err := h.orders.CreatePurchaseOrder(c.Request.Context(), c.Param("id"), procurementapp.CreatePurchaseOrderRequest{
		PoNumber:    body.PoNumber,
		VendorName:  body.VendorName,
		PoValue:     body.PoValue,
		Description: body.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, po)
}

// Get returns one purchase order
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	po, err := h.orders.GetPurchaseOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

// ListByLoa returns the purchase orders of an LOA
func (h *PurchaseOrderHandler) ListByLoa(c *gin.Context) {
	orders, err := h.orders.ListPurchaseOrders(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Delete removes a purchase order
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	if err := h.orders.DeletePurchaseOrder(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
