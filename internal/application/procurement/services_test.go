package procurement

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// BillService
// ============================================================================

func TestBillService_CreateBill(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults received, deducted and status", func(t *testing.T) {
		repos := newTestRepos()
		service := NewBillService(repos.loas, repos.bills, new(MockObjectStorage), nil)
		loa := createStoredLoa()

		repos.loas.On("FindByID", ctx, loa.ID).Return(loa, nil)
		repos.bills.On("Save", ctx, mock.AnythingOfType("*procurement.Bill")).Return(nil)

		bill, err := service.CreateBill(ctx, loa.ID.String(), CreateBillRequest{
			InvoiceNumber: "INV-7",
			InvoiceAmount: decPtr("1200"),
		})

		require.NoError(t, err)
		assert.True(t, bill.AmountReceived.IsZero())
		assert.True(t, bill.AmountDeducted.IsZero())
		assert.True(t, bill.AmountPending.Equal(dec("1200")))
		assert.Equal(t, "REGISTERED", bill.Status)
	})

	t.Run("invalid amounts upload nothing", func(t *testing.T) {
		repos := newTestRepos()
		storage := new(MockObjectStorage)
		service := NewBillService(repos.loas, repos.bills, storage, nil)
		loa := createStoredLoa()

		repos.loas.On("FindByID", ctx, loa.ID).Return(loa, nil)

		_, err := service.CreateBill(ctx, loa.ID.String(), CreateBillRequest{
			InvoiceAmount:  decPtr("100"),
			AmountReceived: decPtr("90"),
			AmountDeducted: decPtr("20"),
			Status:         "LOST",
			InvoicePdf:     &FileUpload{Filename: "inv.pdf"},
		})

		assert.ElementsMatch(t, []string{"amounts", "deduction_reason", "status"}, fieldNames(t, err))
		storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown LOA", func(t *testing.T) {
		repos := newTestRepos()
		service := NewBillService(repos.loas, repos.bills, new(MockObjectStorage), nil)
		id := uuid.New()
		repos.loas.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := service.CreateBill(ctx, id.String(), CreateBillRequest{InvoiceAmount: decPtr("1")})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("save failure removes uploaded invoice", func(t *testing.T) {
		repos := newTestRepos()
		storage := new(MockObjectStorage)
		service := NewBillService(repos.loas, repos.bills, storage, nil)
		loa := createStoredLoa()

		repos.loas.On("FindByID", ctx, loa.ID).Return(loa, nil)
		repos.bills.On("Save", ctx, mock.Anything).Return(errors.New("deadlock"))
		storage.On("Upload", mock.Anything, keyWithKind(DocumentKindInvoice), []byte("%PDF"), "application/pdf").
			Return("https://files.test/inv.pdf", nil)
		storage.On("Delete", ctx, "https://files.test/inv.pdf").Return(nil)

		_, err := service.CreateBill(ctx, loa.ID.String(), CreateBillRequest{
			InvoiceAmount: decPtr("10"),
			InvoicePdf:    &FileUpload{Filename: "inv.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
		})

		require.Error(t, err)
		storage.AssertExpectations(t)
	})
}

func TestBillService_UpdateBill(t *testing.T) {
	ctx := context.Background()

	t.Run("validates the merged bill", func(t *testing.T) {
		repos := newTestRepos()
		service := NewBillService(repos.loas, repos.bills, new(MockObjectStorage), nil)
		bill := createStoredBill(uuid.New(), "100", "60")

		repos.bills.On("FindByID", ctx, bill.ID).Return(&bill, nil)

		_, err := service.UpdateBill(ctx, bill.ID.String(), UpdateBillRequest{
			AmountDeducted:  decPtr("50"),
			DeductionReason: strPtr("penalty"),
		})

		assert.Equal(t, []string{"amounts"}, fieldNames(t, err))
		assert.True(t, bill.AmountDeducted.IsZero())
		repos.bills.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("applies a valid change", func(t *testing.T) {
		repos := newTestRepos()
		service := NewBillService(repos.loas, repos.bills, new(MockObjectStorage), nil)
		bill := createStoredBill(uuid.New(), "100", "60")
		status := "PAYMENT_MADE"

		repos.bills.On("FindByID", ctx, bill.ID).Return(&bill, nil)
		repos.bills.On("Save", ctx, &bill).Return(nil)

		result, err := service.UpdateBill(ctx, bill.ID.String(), UpdateBillRequest{
			AmountDeducted:  decPtr("40"),
			DeductionReason: strPtr("retention"),
			Status:          &status,
		})

		require.NoError(t, err)
		assert.True(t, result.AmountPending.IsZero())
		assert.Equal(t, status, result.Status)
	})
}

func TestBillService_DeleteBill(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	storage := new(MockObjectStorage)
	service := NewBillService(repos.loas, repos.bills, storage, nil)
	bill := createStoredBill(uuid.New(), "100", "0")
	bill.ReplaceInvoicePdf("https://files.test/inv.pdf")

	repos.bills.On("FindByID", ctx, bill.ID).Return(&bill, nil)
	repos.bills.On("Delete", ctx, bill.ID).Return(nil)
	storage.On("Delete", ctx, "https://files.test/inv.pdf").Return(nil)

	require.NoError(t, service.DeleteBill(ctx, bill.ID.String()))
	repos.loas.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	storage.AssertExpectations(t)
}

// ============================================================================
// FinancialCalculationService
// ============================================================================

func TestFinancialCalculationService_GetFinancialSummary(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	service := NewFinancialCalculationService(repos.loas, repos.bills)
	loa := createStoredLoa()
	bills := []procurement.Bill{
		createStoredBill(loa.ID, "100", "40"),
		createStoredBill(loa.ID, "50", "50"),
	}
	// stored before the amount checks existed
	bills[1].AmountDeducted = dec("5")

	repos.loas.On("FindByID", ctx, loa.ID).Return(loa, nil)
	repos.bills.On("FindByLoaID", ctx, loa.ID).Return(bills, nil)

	t.Run("totals and overpaid bills", func(t *testing.T) {
		summary, err := service.GetFinancialSummary(ctx, loa.ID.String(), nil)

		require.NoError(t, err)
		assert.True(t, summary.Totals.TotalBilled.Equal(dec("150")))
		assert.True(t, summary.Totals.TotalReceived.Equal(dec("90")))
		assert.True(t, summary.Totals.TotalPending.Equal(dec("55")))
		assert.True(t, summary.UnbilledValue.Equal(dec("99850")))
		assert.Equal(t, 2, summary.BillCount)
		require.Len(t, summary.OverpaidBills, 1)
		assert.Equal(t, bills[1].ID, summary.OverpaidBills[0].ID)
		assert.Nil(t, summary.PendingSplit)
	})

	t.Run("pending split within tolerance", func(t *testing.T) {
		summary, err := service.GetFinancialSummary(ctx, loa.ID.String(), &PendingSplitInput{
			RecoverablePending: dec("30"),
			PaymentPending:     dec("25.005"),
		})

		require.NoError(t, err)
		require.NotNil(t, summary.PendingSplit)
		assert.True(t, summary.PendingSplit.Valid)
	})

	t.Run("pending split off by more than tolerance", func(t *testing.T) {
		summary, err := service.GetFinancialSummary(ctx, loa.ID.String(), &PendingSplitInput{
			RecoverablePending: dec("30"),
			PaymentPending:     dec("20"),
		})

		require.NoError(t, err)
		assert.False(t, summary.PendingSplit.Valid)
		assert.NotEmpty(t, summary.PendingSplit.Error)
	})
}

// ============================================================================
// AmendmentService / OtherDocumentService
// ============================================================================

func TestAmendmentService(t *testing.T) {
	ctx := context.Background()

	t.Run("creates amendment with document and tags", func(t *testing.T) {
		repos := newTestRepos()
		storage := new(MockObjectStorage)
		service := NewAmendmentService(repos.loas, repos.amendments, storage, nil)
		loa := createStoredLoa()

		repos.loas.On("FindByID", ctx, loa.ID).Return(loa, nil)
		repos.amendments.On("Save", ctx, mock.AnythingOfType("*procurement.Amendment")).Return(nil)
		storage.On("Upload", mock.Anything, keyWithKind(DocumentKindAmendment), mock.Anything, mock.Anything).
			Return("https://files.test/amd.pdf", nil)

		result, err := service.CreateAmendment(ctx, loa.ID.String(), CreateAmendmentRequest{
			AmendmentNumber: "AMD-01",
			Tags:            procurement.TagsFromList([]string{"scope", " scope ", ""}),
			Document:        &FileUpload{Filename: "amd.pdf"},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"scope"}, result.Tags)
		assert.Equal(t, "https://files.test/amd.pdf", *result.DocumentURL)
	})

	t.Run("rename to invalid number keeps the old one", func(t *testing.T) {
		repos := newTestRepos()
		service := NewAmendmentService(repos.loas, repos.amendments, new(MockObjectStorage), nil)
		amendment, _ := procurement.NewAmendment(uuid.New(), "AMD-01")

		repos.amendments.On("FindByID", ctx, amendment.ID).Return(amendment, nil)

		_, err := service.UpdateAmendment(ctx, amendment.ID.String(), UpdateAmendmentRequest{AmendmentNumber: strPtr("A")})

		assert.Equal(t, []string{"amendment_number"}, fieldNames(t, err))
		assert.Equal(t, "AMD-01", amendment.AmendmentNumber)
	})

	t.Run("missing amendment", func(t *testing.T) {
		repos := newTestRepos()
		service := NewAmendmentService(repos.loas, repos.amendments, new(MockObjectStorage), nil)
		id := uuid.New()
		repos.amendments.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		err := service.DeleteAmendment(ctx, id.String())

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOtherDocumentService_CreateDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("short title and missing file are reported before upload", func(t *testing.T) {
		repos := newTestRepos()
		storage := new(MockObjectStorage)
		service := NewOtherDocumentService(repos.loas, repos.documents, storage, nil)
		loa := createStoredLoa()
		repos.loas.On("FindByID", ctx, loa.ID).Return(loa, nil)

		_, err := service.CreateDocument(ctx, loa.ID.String(), CreateOtherDocumentRequest{Title: "ab"})

		assert.ElementsMatch(t, []string{"title", "document"}, fieldNames(t, err))
		storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stores uploaded document", func(t *testing.T) {
		repos := newTestRepos()
		storage := new(MockObjectStorage)
		service := NewOtherDocumentService(repos.loas, repos.documents, storage, nil)
		loa := createStoredLoa()

		repos.loas.On("FindByID", ctx, loa.ID).Return(loa, nil)
		repos.documents.On("Save", ctx, mock.AnythingOfType("*procurement.OtherDocument")).Return(nil)
		storage.On("Upload", mock.Anything, keyWithKind(DocumentKindSupporting), mock.Anything, mock.Anything).
			Return("https://files.test/site-plan.pdf", nil)

		result, err := service.CreateDocument(ctx, loa.ID.String(), CreateOtherDocumentRequest{
			Title:    "Site plan",
			Document: &FileUpload{Filename: "site-plan.pdf"},
		})

		require.NoError(t, err)
		assert.Equal(t, "https://files.test/site-plan.pdf", result.DocumentURL)
	})
}

// ============================================================================
// TenderService / PurchaseOrderService
// ============================================================================

func TestTenderService(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate tender number", func(t *testing.T) {
		repos := newTestRepos()
		service := NewTenderService(repos.tenders, repos.loas, nil)
		repos.tenders.On("ExistsByTenderNumber", ctx, "TND-100").Return(true, nil)

		_, err := service.CreateTender(ctx, CreateTenderRequest{TenderNumber: "TND-100"})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("EMD tender needs an amount", func(t *testing.T) {
		repos := newTestRepos()
		service := NewTenderService(repos.tenders, repos.loas, nil)

		_, err := service.CreateTender(ctx, CreateTenderRequest{TenderNumber: "TND-100", HasEMD: true})

		assert.Contains(t, fieldNames(t, err), "emd_amount")
	})

	t.Run("referenced tender cannot be deleted", func(t *testing.T) {
		repos := newTestRepos()
		service := NewTenderService(repos.tenders, repos.loas, nil)
		tender, _ := procurement.NewTender("TND-100", "", false, nil)

		repos.tenders.On("FindByID", ctx, tender.ID).Return(tender, nil)
		repos.loas.On("CountByTenderID", ctx, tender.ID).Return(int64(1), nil)

		err := service.DeleteTender(ctx, tender.ID.String())

		assert.ErrorIs(t, err, shared.ErrConflict)
		repos.tenders.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		repos := newTestRepos()
		service := NewTenderService(repos.tenders, repos.loas, nil)

		_, _, err := service.ListTenders(ctx, TenderListFilter{Status: "OPEN"})

		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestPurchaseOrderService_CreatePurchaseOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates under an existing LOA", func(t *testing.T) {
		repos := newTestRepos()
		service := NewPurchaseOrderService(repos.loas, repos.pos, nil)
		loa := createStoredLoa()

		repos.loas.On("FindByID", ctx, loa.ID).Return(loa, nil)
		repos.pos.On("ExistsByPoNumber", ctx, "PO-001").Return(false, nil)
		repos.pos.On("Save", ctx, mock.AnythingOfType("*procurement.PurchaseOrder")).Return(nil)

		po, err := service.CreatePurchaseOrder(ctx, loa.ID.String(), CreatePurchaseOrderRequest{
			PoNumber:   "PO-001",
			VendorName: "Acme Steel",
			PoValue:    dec("2500"),
		})

		require.NoError(t, err)
		assert.Equal(t, loa.ID, po.LoaID)
		repos.assertExpectations(t)
	})

	t.Run("duplicate PO number", func(t *testing.T) {
		repos := newTestRepos()
		service := NewPurchaseOrderService(repos.loas, repos.pos, nil)
		loa := createStoredLoa()

		repos.loas.On("FindByID", ctx, loa.ID).Return(loa, nil)
		repos.pos.On("ExistsByPoNumber", ctx, "PO-001").Return(true, nil)

		_, err := service.CreatePurchaseOrder(ctx, loa.ID.String(), CreatePurchaseOrderRequest{
			PoNumber:   "PO-001",
			VendorName: "Acme Steel",
			PoValue:    dec("2500"),
		})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}
