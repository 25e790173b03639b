package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	procurementapp "github.com/procurement/backend/internal/application/procurement"
	"github.com/procurement/backend/internal/interfaces/http/dto"
	"github.com/procurement/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockLoaService is a mock implementation of LoaService
type MockLoaService struct {
	mock.Mock
}

func (m *MockLoaService) CreateLoa(ctx context.Context, req procurementapp.CreateLoaRequest) (*procurementapp.LoaMutationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.LoaMutationResult), args.Error(1)
}

func (m *MockLoaService) UpdateLoa(ctx context.Context, id string, req procurementapp.UpdateLoaRequest) (*procurementapp.LoaMutationResult, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.LoaMutationResult), args.Error(1)
}

func (m *MockLoaService) UpdateStatus(ctx context.Context, id string, req procurementapp.UpdateLoaStatusRequest) (*procurementapp.LoaResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.LoaResponse), args.Error(1)
}

func (m *MockLoaService) DeleteLoa(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLoaService) GetLoa(ctx context.Context, id string) (*procurementapp.LoaDetailResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.LoaDetailResponse), args.Error(1)
}

func (m *MockLoaService) ListLoas(ctx context.Context, filter procurementapp.LoaListFilter) ([]procurementapp.LoaResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]procurementapp.LoaResponse), args.Get(1).(int64), args.Error(2)
}

// MockFinancialSummaryService is a mock implementation of FinancialSummaryService
type MockFinancialSummaryService struct {
	mock.Mock
}

func (m *MockFinancialSummaryService) GetFinancialSummary(ctx context.Context, id string, split *procurementapp.PendingSplitInput) (*procurementapp.FinancialSummaryResponse, error) {
	args := m.Called(ctx, id, split)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.FinancialSummaryResponse), args.Error(1)
}

// MockBillService is a mock implementation of BillService
type MockBillService struct {
	mock.Mock
}

func (m *MockBillService) CreateBill(ctx context.Context, loaID string, req procurementapp.CreateBillRequest) (*procurementapp.BillResponse, error) {
	args := m.Called(ctx, loaID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.BillResponse), args.Error(1)
}

func (m *MockBillService) UpdateBill(ctx context.Context, id string, req procurementapp.UpdateBillRequest) (*procurementapp.BillResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.BillResponse), args.Error(1)
}

func (m *MockBillService) GetBill(ctx context.Context, id string) (*procurementapp.BillResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.BillResponse), args.Error(1)
}

func (m *MockBillService) GetBillsByLoaID(ctx context.Context, loaID string) ([]procurementapp.BillResponse, error) {
	args := m.Called(ctx, loaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurementapp.BillResponse), args.Error(1)
}

func (m *MockBillService) DeleteBill(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockAmendmentService is a mock implementation of AmendmentService
type MockAmendmentService struct {
	mock.Mock
}

func (m *MockAmendmentService) CreateAmendment(ctx context.Context, loaID string, req procurementapp.CreateAmendmentRequest) (*procurementapp.AmendmentResponse, error) {
	args := m.Called(ctx, loaID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.AmendmentResponse), args.Error(1)
}

func (m *MockAmendmentService) UpdateAmendment(ctx context.Context, id string, req procurementapp.UpdateAmendmentRequest) (*procurementapp.AmendmentResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.AmendmentResponse), args.Error(1)
}

func (m *MockAmendmentService) GetAmendment(ctx context.Context, id string) (*procurementapp.AmendmentResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.AmendmentResponse), args.Error(1)
}

func (m *MockAmendmentService) ListAmendments(ctx context.Context, loaID string) ([]procurementapp.AmendmentResponse, error) {
	args := m.Called(ctx, loaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurementapp.AmendmentResponse), args.Error(1)
}

func (m *MockAmendmentService) DeleteAmendment(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockOtherDocumentService is a mock implementation of OtherDocumentService
type MockOtherDocumentService struct {
	mock.Mock
}

func (m *MockOtherDocumentService) CreateDocument(ctx context.Context, loaID string, req procurementapp.CreateOtherDocumentRequest) (*procurementapp.OtherDocumentResponse, error) {
	args := m.Called(ctx, loaID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.OtherDocumentResponse), args.Error(1)
}

func (m *MockOtherDocumentService) UpdateDocument(ctx context.Context, id string, req procurementapp.UpdateOtherDocumentRequest) (*procurementapp.OtherDocumentResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.OtherDocumentResponse), args.Error(1)
}

func (m *MockOtherDocumentService) GetDocument(ctx context.Context, id string) (*procurementapp.OtherDocumentResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.OtherDocumentResponse), args.Error(1)
}

func (m *MockOtherDocumentService) ListDocuments(ctx context.Context, loaID string) ([]procurementapp.OtherDocumentResponse, error) {
	args := m.Called(ctx, loaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurementapp.OtherDocumentResponse), args.Error(1)
}

func (m *MockOtherDocumentService) DeleteDocument(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockTenderService is a mock implementation of TenderService
type MockTenderService struct {
	mock.Mock
}

func (m *MockTenderService) CreateTender(ctx context.Context, req procurementapp.CreateTenderRequest) (*procurementapp.TenderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.TenderResponse), args.Error(1)
}

func (m *MockTenderService) GetTender(ctx context.Context, id string) (*procurementapp.TenderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.TenderResponse), args.Error(1)
}

func (m *MockTenderService) ListTenders(ctx context.Context, filter procurementapp.TenderListFilter) ([]procurementapp.TenderResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]procurementapp.TenderResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockTenderService) DeleteTender(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockPurchaseOrderService is a mock implementation of PurchaseOrderService
type MockPurchaseOrderService struct {
	mock.Mock
}

func (m *MockPurchaseOrderService) CreatePurchaseOrder(ctx context.Context, loaID string, req procurementapp.CreatePurchaseOrderRequest) (*procurementapp.PurchaseOrderResponse, error) {
	args := m.Called(ctx, loaID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.PurchaseOrderResponse), args.Error(1)
}

func (m *MockPurchaseOrderService) GetPurchaseOrder(ctx context.Context, id string) (*procurementapp.PurchaseOrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurementapp.PurchaseOrderResponse), args.Error(1)
}

func (m *MockPurchaseOrderService) ListPurchaseOrders(ctx context.Context, loaID string) ([]procurementapp.PurchaseOrderResponse, error) {
	args := m.Called(ctx, loaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurementapp.PurchaseOrderResponse), args.Error(1)
}

func (m *MockPurchaseOrderService) DeletePurchaseOrder(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// ==================== request helpers ====================

type formFile struct {
	field    string
	filename string
	data     []byte
}

// multipartBody builds a multipart/form-data body. Each field value is
// written as its own part, so repeated keys are possible.
func multipartBody(t *testing.T, fields [][2]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, kv := range fields {
		require.NoError(t, w.WriteField(kv[0], kv[1]))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func detailFields(resp dto.Response) []string {
	if resp.Error == nil {
		return nil
	}
	fields := make([]string, len(resp.Error.Details))
	for i, d := range resp.Error.Details {
		fields[i] = d.Field
	}
	return fields
}

func newEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	return engine
}
