package handler

import (
	"context"

	dropshipapp "github.com/erp/dropship/internal/application/dropship"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SupplierOrders is the supplier order service used by OrderHandler
type SupplierOrders interface {
	Create(ctx context.Context, supplierID uuid.UUID, req dropshipapp.CreateOrderRequest) (*dropshipapp.OrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dropshipapp.OrderResponse, error)
	Advance(ctx context.Context, id uuid.UUID, req dropshipapp.AdvanceOrderRequest) (*dropshipapp.OrderResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, supplierID uuid.UUID, filter dropshipapp.OrderListFilter) ([]dropshipapp.OrderResponse, int64, error)
	Send(ctx context.Context, id uuid.UUID) (*dropshipapp.OrderResponse, error)
}

// OrderHandler handles supplier order endpoints
type OrderHandler struct {
	BaseHandler
	orders SupplierOrders
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders SupplierOrders) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List godoc
// @Summary      List supplier orders
// @Tags         supplier-orders
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        status query string false "Order status" Enums(pending, sent, confirmed, shipped, delivered)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(50) maximum(100)
// @Success      200 {object} APIResponse[[]dropshipapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/suppliers/{id}/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	supplierID, ok := h.parseID(c, "id", "supplier")
	if !ok {
		return
	}

	var filter dropshipapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	orders, total, err := h.orders.List(c.Request.Context(), supplierID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := effectivePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, orders, total, page, pageSize)
}

// Create godoc
// @Summary      Record a supplier order
// @Description  Record the supplier's share of a storefront order. Amounts are in major units.
// @Tags         supplier-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        request body dropshipapp.CreateOrderRequest true "Supplier order"
// @Success      201 {object} APIResponse[dropshipapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/suppliers/{id}/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	supplierID, ok := h.parseID(c, "id", "supplier")
	if !ok {
		return
	}

	var req dropshipapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.orders.Create(c.Request.Context(), supplierID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// Get godoc
// @Summary      Get a supplier order
// @Tags         supplier-orders
// @Produce      json
// @Param        id path string true "Supplier order ID" format(uuid)
// @Success      200 {object} APIResponse[dropshipapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Advance godoc
// @Summary      Advance a supplier order
// @Description  Move an order one step along pending, sent, confirmed, shipped, delivered. Earlier statuses are a no-op; skipping a step is rejected.
// @Tags         supplier-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier order ID" format(uuid)
// @Param        request body dropshipapp.AdvanceOrderRequest true "Target status"
// @Success      200 {object} APIResponse[dropshipapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/orders/{id}/status [patch]
func (h *OrderHandler) Advance(c *gin.Context) {
	id, ok := h.parseID(c, "id", "order")
	if !ok {
		return
	}

	var req dropshipapp.AdvanceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.orders.Advance(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Send godoc
// @Summary      Send an order to the supplier
// @Description  Place a pending order through the supplier's order API and mark it sent
// @Tags         supplier-orders
// @Produce      json
// @Param        id path string true "Supplier order ID" format(uuid)
// @Success      200 {object} APIResponse[dropshipapp.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/orders/{id}/send [post]
func (h *OrderHandler) Send(c *gin.Context) {
	id, ok := h.parseID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orders.Send(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Delete godoc
// @Summary      Delete a pending supplier order
// @Tags         supplier-orders
// @Param        id path string true "Supplier order ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id", "order")
	if !ok {
		return
	}

	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
