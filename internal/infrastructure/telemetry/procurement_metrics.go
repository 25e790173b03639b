package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// Upload outcomes reported on procurement_document_uploads_total
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ProcurementMetrics holds the business instruments of the procurement
// services. A nil *ProcurementMetrics records nothing.
type ProcurementMetrics struct {
	loasCreated      *Counter
	statusChanges    *Counter
	billsCreated     *Counter
	documentUploads  *Counter
	documentSize     *Histogram
	compensationRuns *Counter
}

// NewProcurementMetrics creates every instrument on meter
func NewProcurementMetrics(meter metric.Meter) (*ProcurementMetrics, error) {
	m := &ProcurementMetrics{}
	var err error

	if m.loasCreated, err = NewCounter(meter,
		"procurement_loas_created_total", "Number of LOAs created", "{loa}"); err != nil {
		return nil, err
	}
	if m.statusChanges, err = NewCounter(meter,
		"procurement_loa_status_changes_total", "Number of LOA status transitions", "{transition}"); err != nil {
		return nil, err
	}
	if m.billsCreated, err = NewCounter(meter,
		"procurement_bills_created_total", "Number of bills created", "{bill}"); err != nil {
		return nil, err
	}
	if m.documentUploads, err = NewCounter(meter,
		"procurement_document_uploads_total", "Document uploads by kind and outcome", "{upload}"); err != nil {
		return nil, err
	}
	if m.documentSize, err = NewHistogram(meter, HistogramOpts{
		Name:        "procurement_document_size_bytes",
		Description: "Size of uploaded documents",
		Unit:        "By",
		Boundaries:  DocumentSizeBuckets,
	}); err != nil {
		return nil, err
	}
	if m.compensationRuns, err = NewCounter(meter,
		"procurement_compensation_steps_total", "Undo steps run after failed writes", "{step}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordLoaCreated counts a stored LOA by its initial status
func (m *ProcurementMetrics) RecordLoaCreated(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.loasCreated.Inc(ctx, AttrLoaStatus.String(status))
}

// RecordStatusChange counts an LOA status transition
func (m *ProcurementMetrics) RecordStatusChange(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	m.statusChanges.Inc(ctx, AttrFromStatus.String(from), AttrLoaStatus.String(to))
}

// RecordBillCreated counts a stored bill
func (m *ProcurementMetrics) RecordBillCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.billsCreated.Inc(ctx)
}

// RecordDocumentUpload counts an upload attempt and, when it succeeded, its size
func (m *ProcurementMetrics) RecordDocumentUpload(ctx context.Context, kind string, size int, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.documentUploads.Inc(ctx, AttrDocumentKind.String(kind), AttrOutcome.String(outcome))
	if err == nil {
		m.documentSize.Record(ctx, float64(size), AttrDocumentKind.String(kind))
	}
}

// RecordCompensation counts undo steps run after a failed write
func (m *ProcurementMetrics) RecordCompensation(ctx context.Context, steps, failed int) {
	if m == nil || steps == 0 {
		return
	}
	if ok := steps - failed; ok > 0 {
		m.compensationRuns.Add(ctx, int64(ok), AttrOutcome.String(OutcomeSuccess))
	}
	if failed > 0 {
		m.compensationRuns.Add(ctx, int64(failed), AttrOutcome.String(OutcomeFailure))
	}
}
