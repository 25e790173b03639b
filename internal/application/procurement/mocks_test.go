package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// ============================================================================
// Mocks
// ============================================================================

// MockLoaRepository is a mock implementation of LoaRepository
type MockLoaRepository struct {
	mock.Mock
}

func (m *MockLoaRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.LOA, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.LOA), args.Error(1)
}

func (m *MockLoaRepository) FindByLoaNumber(ctx context.Context, loaNumber string) (*procurement.LOA, error) {
	args := m.Called(ctx, loaNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.LOA), args.Error(1)
}

func (m *MockLoaRepository) FindAll(ctx context.Context, filter procurement.LoaFilter) ([]procurement.LOA, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.LOA), args.Error(1)
}

func (m *MockLoaRepository) Count(ctx context.Context, filter procurement.LoaFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoaRepository) ExistsByLoaNumber(ctx context.Context, loaNumber string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, loaNumber, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoaRepository) CountByTenderID(ctx context.Context, tenderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoaRepository) Save(ctx context.Context, loa *procurement.LOA) error {
	args := m.Called(ctx, loa)
	return args.Error(0)
}

func (m *MockLoaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ procurement.LoaRepository = (*MockLoaRepository)(nil)

// MockBillRepository is a mock implementation of BillRepository
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByLoaID(ctx context.Context, loaID uuid.UUID) ([]procurement.Bill, error) {
	args := m.Called(ctx, loaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.Bill), args.Error(1)
}

func (m *MockBillRepository) CountByLoaID(ctx context.Context, loaID uuid.UUID) (int64, error) {
	args := m.Called(ctx, loaID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) Save(ctx context.Context, bill *procurement.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBillRepository) DeleteByLoaID(ctx context.Context, loaID uuid.UUID) error {
	args := m.Called(ctx, loaID)
	return args.Error(0)
}

var _ procurement.BillRepository = (*MockBillRepository)(nil)

// MockAmendmentRepository is a mock implementation of AmendmentRepository
type MockAmendmentRepository struct {
	mock.Mock
}

func (m *MockAmendmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Amendment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Amendment), args.Error(1)
}

func (m *MockAmendmentRepository) FindByLoaID(ctx context.Context, loaID uuid.UUID) ([]procurement.Amendment, error) {
	args := m.Called(ctx, loaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.Amendment), args.Error(1)
}

func (m *MockAmendmentRepository) Save(ctx context.Context, amendment *procurement.Amendment) error {
	args := m.Called(ctx, amendment)
	return args.Error(0)
}

func (m *MockAmendmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAmendmentRepository) DeleteByLoaID(ctx context.Context, loaID uuid.UUID) error {
	args := m.Called(ctx, loaID)
	return args.Error(0)
}

var _ procurement.AmendmentRepository = (*MockAmendmentRepository)(nil)

// MockOtherDocumentRepository is a mock implementation of OtherDocumentRepository
type MockOtherDocumentRepository struct {
	mock.Mock
}

func (m *MockOtherDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.OtherDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.OtherDocument), args.Error(1)
}

func (m *MockOtherDocumentRepository) FindByLoaID(ctx context.Context, loaID uuid.UUID) ([]procurement.OtherDocument, error) {
	args := m.Called(ctx, loaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.OtherDocument), args.Error(1)
}

func (m *MockOtherDocumentRepository) Save(ctx context.Context, doc *procurement.OtherDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockOtherDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOtherDocumentRepository) DeleteByLoaID(ctx context.Context, loaID uuid.UUID) error {
	args := m.Called(ctx, loaID)
	return args.Error(0)
}

var _ procurement.OtherDocumentRepository = (*MockOtherDocumentRepository)(nil)

// MockTenderRepository is a mock implementation of TenderRepository
type MockTenderRepository struct {
	mock.Mock
}

func (m *MockTenderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.Tender, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.Tender), args.Error(1)
}

func (m *MockTenderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.Tender, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.Tender), args.Error(1)
}

func (m *MockTenderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTenderRepository) ExistsByTenderNumber(ctx context.Context, tenderNumber string) (bool, error) {
	args := m.Called(ctx, tenderNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockTenderRepository) Save(ctx context.Context, tender *procurement.Tender) error {
	args := m.Called(ctx, tender)
	return args.Error(0)
}

func (m *MockTenderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ procurement.TenderRepository = (*MockTenderRepository)(nil)

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByLoaID(ctx context.Context, loaID uuid.UUID) ([]procurement.PurchaseOrder, error) {
	args := m.Called(ctx, loaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) CountByLoaID(ctx context.Context, loaID uuid.UUID) (int64, error) {
	args := m.Called(ctx, loaID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) ExistsByPoNumber(ctx context.Context, poNumber string) (bool, error) {
	args := m.Called(ctx, poNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, po *procurement.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ procurement.PurchaseOrderRepository = (*MockPurchaseOrderRepository)(nil)

// MockObjectStorage is a mock implementation of ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

var _ ObjectStorage = (*MockObjectStorage)(nil)

// testRepos bundles the mock repositories shared by a test
type testRepos struct {
	loas       *MockLoaRepository
	bills      *MockBillRepository
	amendments *MockAmendmentRepository
	documents  *MockOtherDocumentRepository
	tenders    *MockTenderRepository
	pos        *MockPurchaseOrderRepository
}

func newTestRepos() *testRepos {
	return &testRepos{
		loas:       new(MockLoaRepository),
		bills:      new(MockBillRepository),
		amendments: new(MockAmendmentRepository),
		documents:  new(MockOtherDocumentRepository),
		tenders:    new(MockTenderRepository),
		pos:        new(MockPurchaseOrderRepository),
	}
}

func (r *testRepos) repositories() procurement.Repositories {
	return procurement.Repositories{
		Loas:           r.loas,
		Bills:          r.bills,
		Amendments:     r.amendments,
		Documents:      r.documents,
		Tenders:        r.tenders,
		PurchaseOrders: r.pos,
	}
}

func (r *testRepos) assertExpectations(t mock.TestingT) {
	r.loas.AssertExpectations(t)
	r.bills.AssertExpectations(t)
	r.amendments.AssertExpectations(t)
	r.documents.AssertExpectations(t)
	r.tenders.AssertExpectations(t)
	r.pos.AssertExpectations(t)
}

// fakeUnitOfWork runs fn against the mock repositories. It counts calls and
// does not roll anything back.
type fakeUnitOfWork struct {
	repos procurement.Repositories
	calls int
}

func (u *fakeUnitOfWork) WithinTx(ctx context.Context, fn func(r procurement.Repositories) error) error {
	u.calls++
	return fn(u.repos)
}

var _ procurement.UnitOfWork = (*fakeUnitOfWork)(nil)
