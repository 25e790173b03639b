package procurement

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAmendment(t *testing.T) {
	loaID := uuid.New()

	a, err := NewAmendment(loaID, " AMD-01 ")
	require.NoError(t, err)
	assert.Equal(t, "AMD-01", a.AmendmentNumber)
	assert.Nil(t, a.DocumentURL)

	_, err = NewAmendment(loaID, "A1")
	assert.Equal(t, []string{"amendment_number"}, fieldsOf(t, err))

	_, err = NewAmendment(loaID, strings.Repeat("9", AmendmentNumberMaxLength+1))
	assert.Error(t, err)

	_, err = NewAmendment(uuid.Nil, "AMD-02")
	assert.Equal(t, []string{"loa_id"}, fieldsOf(t, err))
}

func TestAmendment_Rename(t *testing.T) {
	a, err := NewAmendment(uuid.New(), "AMD-01")
	require.NoError(t, err)

	require.NoError(t, a.Rename("AMD-01-R"))
	assert.Equal(t, "AMD-01-R", a.AmendmentNumber)

	require.Error(t, a.Rename("x"))
	assert.Equal(t, "AMD-01-R", a.AmendmentNumber)
}

func TestNewOtherDocument(t *testing.T) {
	loaID := uuid.New()

	doc, err := NewOtherDocument(loaID, "Site survey", "https://files/survey.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Site survey", doc.Title)

	_, err = NewOtherDocument(loaID, "ab", "")
	assert.ElementsMatch(t, []string{"title", "document"}, fieldsOf(t, err))

	_, err = NewOtherDocument(loaID, strings.Repeat("t", DocumentTitleMaxLength+1), "https://files/x.pdf")
	assert.Equal(t, []string{"title"}, fieldsOf(t, err))
}

func TestOtherDocument_Retitle(t *testing.T) {
	doc, err := NewOtherDocument(uuid.New(), "Site survey", "https://files/survey.pdf")
	require.NoError(t, err)

	require.Error(t, doc.Retitle(""))
	assert.Equal(t, "Site survey", doc.Title)

	assert.Equal(t, "https://files/survey.pdf", doc.ReplaceDocument("https://files/survey-v2.pdf"))
}

func TestNewTender(t *testing.T) {
	tender, err := NewTender("TND-100", "Bridge works", true, ptr("500"))
	require.NoError(t, err)
	assert.Equal(t, TenderStatusActive, tender.Status)

	_, err = NewTender("TND-101", "", true, nil)
	assert.Equal(t, []string{"emd_amount"}, fieldsOf(t, err))

	_, err = NewTender("TN", "", false, ptr("10"))
	assert.ElementsMatch(t, []string{"tender_number", "emd_amount"}, fieldsOf(t, err))
}

func TestNewPurchaseOrder(t *testing.T) {
	po, err := NewPurchaseOrder(uuid.New(), "PO-77", "Acme Steel", d("1200"))
	require.NoError(t, err)
	assert.Equal(t, "Acme Steel", po.VendorName)

	_, err = NewPurchaseOrder(uuid.Nil, "P", "", d("0"))
	assert.ElementsMatch(t, []string{"loa_id", "po_number", "vendor_name", "po_value"}, fieldsOf(t, err))
}
