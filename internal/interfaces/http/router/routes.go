package router

import (
	"github.com/duka/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the HTTP handlers of the API
type Handlers struct {
	System      *handler.SystemHandler
	Shop        *handler.ShopHandler
	Inventory   *handler.InventoryHandler
	Customer    *handler.CustomerHandler
	Sale        *handler.SaleHandler
	Debt        *handler.DebtHandler
	Expenditure *handler.ExpenditureHandler
	Report      *handler.ReportHandler
}

// Groups builds the domain route groups. idempotent wraps the routes that
// honour the Idempotency-Key header.
func Groups(h Handlers, idempotent gin.HandlerFunc) []RouteRegistrar {
	health := NewDomainGroup("system", "")
	health.GET("/health", h.System.Health)

	shops := NewDomainGroup("shops", "/shops")
	shops.GET("", h.Shop.List)
	shops.POST("", h.Shop.Create)

	inventory := NewDomainGroup("inventory", "/inventory")
	categories := inventory.Group("categories", "/categories")
	categories.GET("", h.Inventory.ListCategories)
	categories.POST("", h.Inventory.CreateCategory)
	items := inventory.Group("items", "/items")
	items.GET("", h.Inventory.ListItems)
	items.POST("", h.Inventory.CreateItem)
	items.GET("/low-stock", h.Inventory.LowStock)
	items.GET("/:id", h.Inventory.GetItem)
	items.PUT("/:id", h.Inventory.UpdateItem)
	items.DELETE("/:id", h.Inventory.DeleteItem)
	items.POST("/:id/restock", h.Inventory.Restock)
	items.POST("/:id/adjust", h.Inventory.Adjust)

	customers := NewDomainGroup("customers", "/customers")
	customers.GET("", h.Customer.List)
	customers.POST("", h.Customer.Create)
	customers.GET("/:id", h.Customer.GetByID)
	customers.PUT("/:id", h.Customer.Update)
	customers.DELETE("/:id", h.Customer.Delete)
	customers.POST("/:id/remind", h.Customer.Remind)

	sales := NewDomainGroup("sales", "/sales")
	sales.GET("", h.Sale.List)
	sales.POST("", h.Sale.Create)
	sales.GET("/export", h.Sale.Export)
	sales.POST("/bulk-delete", h.Sale.BulkDelete)
	sales.GET("/:id", h.Sale.Get)
	sales.DELETE("/:id", h.Sale.Delete)
	sales.POST("/:id/mark-paid", h.Sale.MarkPaid)
	sales.GET("/:id/receipt", h.Sale.Receipt)
	sales.POST("/:id/items", h.Sale.AddItem)
	sales.PUT("/:id/items/:item_id", h.Sale.UpdateItem)
	sales.DELETE("/:id/items/:item_id", h.Sale.RemoveItem)

	debts := NewDomainGroup("debts", "/debts")
	debts.GET("", h.Debt.List)
	debts.POST("", h.Debt.Create)
	debts.GET("/:id", h.Debt.Get)
	debts.DELETE("/:id", h.Debt.Delete)
	debts.GET("/:id/payments", h.Debt.ListPayments)
	debts.POST("/:id/payments", idempotent, h.Debt.RecordPayment)
	debts.POST("/:id/remind", h.Debt.Remind)

	expenditures := NewDomainGroup("expenditures", "/expenditures")
	expenditures.GET("", h.Expenditure.List)
	expenditures.POST("", h.Expenditure.Create)
	expenditures.GET("/export", h.Expenditure.Export)
	expenditures.PUT("/:id", h.Expenditure.Update)
	expenditures.DELETE("/:id", h.Expenditure.Delete)

	reports := NewDomainGroup("reports", "/reports")
	reports.GET("/daily", h.Report.Daily)
	reports.GET("/monthly", h.Report.Monthly)
	reports.GET("/dashboard", h.Report.Dashboard)
	reports.GET("/sales/:id/profit", h.Report.SaleProfit)

	return []RouteRegistrar{health, shops, inventory, customers, sales, debts, expenditures, reports}
}
