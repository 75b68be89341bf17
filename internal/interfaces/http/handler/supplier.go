package handler

import (
	"context"

	dropshipapp "github.com/erp/dropship/internal/application/dropship"
	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SupplierRegistry is the supplier registry used by SupplierHandler
type SupplierRegistry interface {
	Create(ctx context.Context, req dropshipapp.CreateSupplierRequest) (*dropshipapp.SupplierResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dropshipapp.SupplierResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dropshipapp.UpdateSupplierRequest) (*dropshipapp.SupplierResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter dropshipapp.SupplierListFilter) ([]dropshipapp.SupplierResponse, int64, error)
	ListProducts(ctx context.Context, supplierID uuid.UUID, filter dropshipapp.ProductListFilter) ([]dropshipapp.ProductResponse, int64, error)
	AddProduct(ctx context.Context, supplierID uuid.UUID, req dropshipapp.AddProductRequest) (*dropshipapp.ProductResponse, error)
}

// CatalogSyncer pulls one supplier's feed
type CatalogSyncer interface {
	Sync(ctx context.Context, supplierID uuid.UUID) (*dropship.SyncReport, error)
}

// CatalogMaterializer publishes unlinked supplier products as catalog listings
type CatalogMaterializer interface {
	Materialize(ctx context.Context, supplierID uuid.UUID, ids []uuid.UUID) (*dropship.MaterializeReport, error)
}

// SupplierHandler handles supplier registry and catalog endpoints
type SupplierHandler struct {
	BaseHandler
	registry     SupplierRegistry
	syncer       CatalogSyncer
	materializer CatalogMaterializer
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(registry SupplierRegistry, syncer CatalogSyncer, materializer CatalogMaterializer) *SupplierHandler {
	return &SupplierHandler{
		registry:     registry,
		syncer:       syncer,
		materializer: materializer,
	}
}

// List godoc
// @Summary      List suppliers
// @Description  Retrieve a paginated list of suppliers with optional filtering
// @Tags         suppliers
// @Produce      json
// @Param        search query string false "Search term (name, code, email)"
// @Param        is_active query bool false "Filter by active flag"
// @Param        is_dropship query bool false "Filter by dropship flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(50) maximum(100)
// @Param        order_by query string false "Order by field" default(name)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(asc)
// @Success      200 {object} APIResponse[[]dropshipapp.SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	var filter dropshipapp.SupplierListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	suppliers, total, err := h.registry.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := effectivePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, suppliers, total, page, pageSize)
}

// Create godoc
// @Summary      Register a supplier
// @Description  Register a dropship supplier. A stock location is provisioned for dropship suppliers when enabled.
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request body dropshipapp.CreateSupplierRequest true "Supplier registration request"
// @Success      201 {object} APIResponse[dropshipapp.SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req dropshipapp.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	supplier, err := h.registry.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, supplier)
}

// Get godoc
// @Summary      Get supplier by ID
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      200 {object} APIResponse[dropshipapp.SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/suppliers/{id} [get]
func (h *SupplierHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id", "supplier")
	if !ok {
		return
	}

	supplier, err := h.registry.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, supplier)
}

// Update godoc
// @Summary      Update a supplier
// @Description  Partially update a supplier; omitted fields are left unchanged
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        request body dropshipapp.UpdateSupplierRequest true "Supplier update request"
// @Success      200 {object} APIResponse[dropshipapp.SupplierResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/suppliers/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id", "supplier")
	if !ok {
		return
	}

	var req dropshipapp.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	supplier, err := h.registry.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, supplier)
}

// Delete godoc
// @Summary      Delete a supplier
// @Description  Delete a supplier with no active products and no unshipped orders, together with its products and orders
// @Tags         suppliers
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/suppliers/{id} [delete]
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id", "supplier")
	if !ok {
		return
	}

	if err := h.registry.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListProducts godoc
// @Summary      List supplier products
// @Tags         supplier-products
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        search query string false "Search by SKU or name"
// @Param        sync_status query string false "Sync status" Enums(pending, synced, error)
// @Param        is_active query bool false "Filter by active flag"
// @Param        linked query bool false "Filter by catalog link"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(50) maximum(100)
// @Success      200 {object} APIResponse[[]dropshipapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/suppliers/{id}/products [get]
func (h *SupplierHandler) ListProducts(c *gin.Context) {
	id, ok := h.parseID(c, "id", "supplier")
	if !ok {
		return
	}

	var filter dropshipapp.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	products, total, err := h.registry.ListProducts(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := effectivePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, products, total, page, pageSize)
}

// AddProduct godoc
// @Summary      Add a supplier product
// @Description  Manually add a product to a supplier's catalog. Prices are in major units.
// @Tags         supplier-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        request body dropshipapp.AddProductRequest true "Supplier product"
// @Success      201 {object} APIResponse[dropshipapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/suppliers/{id}/products [post]
func (h *SupplierHandler) AddProduct(c *gin.Context) {
	id, ok := h.parseID(c, "id", "supplier")
	if !ok {
		return
	}

	var req dropshipapp.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	product, err := h.registry.AddProduct(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// Sync godoc
// @Summary      Sync a supplier catalog
// @Description  Fetch the supplier feed and upsert its rows. Row failures are reported, not fatal.
// @Tags         catalog-sync
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      200 {object} APIResponse[dropshipapp.SyncReportResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/suppliers/{id}/sync [post]
func (h *SupplierHandler) Sync(c *gin.Context) {
	id, ok := h.parseID(c, "id", "supplier")
	if !ok {
		return
	}

	report, err := h.syncer.Sync(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dropshipapp.ToSyncReportResponse(report))
}

// Materialize godoc
// @Summary      Materialize supplier products
// @Description  Publish up to one batch of unlinked supplier products as catalog products. An empty body covers every unlinked product.
// @Tags         catalog-sync
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        request body dropshipapp.MaterializeRequest false "Restrict to supplier product IDs"
// @Success      200 {object} APIResponse[dropshipapp.MaterializeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /dropship/suppliers/{id}/materialize [post]
func (h *SupplierHandler) Materialize(c *gin.Context) {
	id, ok := h.parseID(c, "id", "supplier")
	if !ok {
		return
	}

	var req dropshipapp.MaterializeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	report, err := h.materializer.Materialize(c.Request.Context(), id, req.IDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dropshipapp.ToMaterializeResponse(report))
}

// effectivePage mirrors the list defaults applied by the services
func effectivePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = dropshipapp.DefaultPageSize
	case pageSize > dropshipapp.MaxPageSize:
		pageSize = dropshipapp.MaxPageSize
	}
	return page, pageSize
}
