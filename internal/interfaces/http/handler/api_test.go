package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	appfinance "github.com/duka/backend/internal/application/finance"
	appinventory "github.com/duka/backend/internal/application/inventory"
	apppartner "github.com/duka/backend/internal/application/partner"
	appreminder "github.com/duka/backend/internal/application/reminder"
	appreport "github.com/duka/backend/internal/application/report"
	appshop "github.com/duka/backend/internal/application/shop"
	apptrade "github.com/duka/backend/internal/application/trade"
	"github.com/duka/backend/internal/domain/report"
	"github.com/duka/backend/internal/domain/shop"
	"github.com/duka/backend/internal/infrastructure/cache"
	"github.com/duka/backend/internal/infrastructure/persistence"
	"github.com/duka/backend/internal/infrastructure/printing"
	"github.com/duka/backend/internal/interfaces/http/handler"
	"github.com/duka/backend/internal/interfaces/http/middleware"
	"github.com/duka/backend/internal/interfaces/http/router"
	"github.com/duka/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var eat = time.FixedZone("EAT", 3*3600)

// sentMessage is one reminder captured by recordingSender
type sentMessage struct {
	Phone   string
	Message string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (s *recordingSender) Send(_ context.Context, phone, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{Phone: phone, Message: message})
	return nil
}

func (s *recordingSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

// api is a full HTTP stack over an in-memory sqlite database
type api struct {
	db     *gorm.DB
	engine *gin.Engine
	shopID uuid.UUID
	sender *recordingSender
}

func newAPI(t *testing.T) *api {
	t.Helper()
	middleware.SetupValidator()

	db := testutil.NewSQLiteDB(t)
	repos := persistence.NewRepositories(db)
	scope := persistence.NewGormTransactionScope(db)
	ledger := appinventory.NewLedger(nil)
	profit := report.NewProfitAllocator(appreport.NewRepositoryCostSource(repos), nil)
	sender := &recordingSender{}

	shopService := appshop.NewShopService(persistence.NewGormShopRepository(db), nil)
	saleService := apptrade.NewSaleService(scope, repos, ledger, profit, eat, nil)
	saleService.SetReceiptPrinter(printing.NewReceiptPrinter(nil, "TZS", nil))
	saleService.SetTablePrinter(printing.NewTablePrinter(nil, "TZS", nil))
	reminderService := appreminder.NewReminderService(repos, sender, appreminder.NewComposer("TZS"), eat, nil)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	handlers := router.Handlers{
		System:    handler.NewSystemHandler("duka-backend", "test", sqlDB),
		Shop:      handler.NewShopHandler(shopService),
		Inventory: handler.NewInventoryHandler(appinventory.NewCategoryService(repos), appinventory.NewStockItemService(scope, repos, ledger, nil)),
		Customer:  handler.NewCustomerHandler(apppartner.NewCustomerService(repos, nil), reminderService),
		Sale:      handler.NewSaleHandler(saleService),
		Debt:      handler.NewDebtHandler(appfinance.NewDebtService(scope, repos, ledger, eat, nil), reminderService),
		Expenditure: handler.NewExpenditureHandler(
			appfinance.NewExpenditureService(repos.Expenditures(), eat, nil),
		),
		Report: handler.NewReportHandler(appreport.NewReportService(repos, eat, nil)),
	}

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).
		Use(middleware.ShopContext(middleware.DefaultShopConfig(shopService))).
		Register(router.Groups(handlers, middleware.Idempotency(middleware.DefaultIdempotencyConfig(store)))...).
		Setup()

	s := testutil.SeedShop(t, db, shop.ShopTypeStationery)
	return &api{db: db, engine: engine, shopID: s.ID, sender: sender}
}

func (a *api) headers(extra ...string) map[string]string {
	h := map[string]string{middleware.ShopHeaderKey: a.shopID.String()}
	for i := 0; i+1 < len(extra); i += 2 {
		h[extra[i]] = extra[i+1]
	}
	return h
}

func (a *api) do(t *testing.T, method, path string, body any, extra ...string) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.PerformRequest(t, a.engine, method, "/api/v1"+path, body, a.headers(extra...))
}

// data decodes a successful envelope, failing on any other status
func data[T any](t *testing.T, w *httptest.ResponseRecorder, status int) T {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	resp := testutil.DecodeJSON[testutil.APIResponse[T]](t, w)
	require.True(t, resp.Success)
	return resp.Data
}

func dataList[T any](t *testing.T, w *httptest.ResponseRecorder) ([]T, *testutil.APIMeta) {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := testutil.DecodeJSON[testutil.APIResponse[[]T]](t, w)
	require.True(t, resp.Success)
	return resp.Data, resp.Meta
}

// newAPIShop seeds a second shop in the same database
func newAPIShop(t *testing.T, a *api) uuid.UUID {
	t.Helper()
	return testutil.SeedShop(t, a.db, shop.ShopTypeDukaLaVinywaji).ID
}
