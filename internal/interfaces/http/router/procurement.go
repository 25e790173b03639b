package router

import (
	"github.com/gin-gonic/gin"
	"github.com/procurement/backend/internal/interfaces/http/handler"
)

// Handlers holds every handler the procurement API mounts
type Handlers struct {
	Loa           *handler.LoaHandler
	Bill          *handler.BillHandler
	Amendment     *handler.AmendmentHandler
	Document      *handler.OtherDocumentHandler
	Tender        *handler.TenderHandler
	PurchaseOrder *handler.PurchaseOrderHandler
	System        *handler.SystemHandler
}

// LoaRoutes covers the LOA lifecycle and the sub-resources created under an LOA
func LoaRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("loas", "/loas").
		POST("", h.Loa.Create).
		GET("", h.Loa.List).
		GET("/:id", h.Loa.Get).
		PUT("/:id", h.Loa.Update).
		PATCH("/:id/status", h.Loa.UpdateStatus).
		DELETE("/:id", h.Loa.Delete).
		GET("/:id/financial-summary", h.Loa.FinancialSummary)

	g.GET("/:id/bills", h.Bill.ListByLoa).
		POST("/:id/bills", h.Bill.Create).
		GET("/:id/amendments", h.Amendment.ListByLoa).
		POST("/:id/amendments", h.Amendment.Create).
		GET("/:id/documents", h.Document.ListByLoa).
		POST("/:id/documents", h.Document.Create).
		GET("/:id/purchase-orders", h.PurchaseOrder.ListByLoa).
		POST("/:id/purchase-orders", h.PurchaseOrder.Create)
	return g
}

// BillRoutes addresses bills by their own id
func BillRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("bills", "/bills").
		GET("/:id", h.Bill.Get).
		PUT("/:id", h.Bill.Update).
		DELETE("/:id", h.Bill.Delete)
}

// AmendmentRoutes addresses amendments by their own id
func AmendmentRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("amendments", "/amendments").
		GET("/:id", h.Amendment.Get).
		PUT("/:id", h.Amendment.Update).
		DELETE("/:id", h.Amendment.Delete)
}

// DocumentRoutes addresses supporting documents by their own id
func DocumentRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("documents", "/documents").
		GET("/:id", h.Document.Get).
		PUT("/:id", h.Document.Update).
		DELETE("/:id", h.Document.Delete)
}

// PurchaseOrderRoutes addresses purchase orders by their own id
func PurchaseOrderRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("purchase-orders", "/purchase-orders").
		GET("/:id", h.PurchaseOrder.Get).
		DELETE("/:id", h.PurchaseOrder.Delete)
}

// TenderRoutes covers tender registration
func TenderRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("tenders", "/tenders").
		POST("", h.Tender.Create).
		GET("", h.Tender.List).
		GET("/:id", h.Tender.Get).
		DELETE("/:id", h.Tender.Delete)
}

// SystemRoutes exposes build info and a liveness ping under the API prefix
func SystemRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)
}

// Mount registers /health on the engine and every procurement group under
// the versioned API prefix. API middleware from opts does not apply to /health.
func Mount(engine *gin.Engine, h Handlers, opts ...RouterOption) *Router {
	engine.GET("/health", h.System.Health)

	r := NewRouter(engine, opts...)
	r.Register(
		LoaRoutes(h),
		BillRoutes(h),
		AmendmentRoutes(h),
		DocumentRoutes(h),
		PurchaseOrderRoutes(h),
		TenderRoutes(h),
		SystemRoutes(h),
	)
	r.Setup()
	return r
}
