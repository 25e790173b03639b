// Package procurement contains the LOA (Letter of Authorization) bounded context:
// LOAs, their bills, amendments and supporting documents, the tenders they are
// awarded from, and the purchase orders raised against them.
//
// Monetary values are shopspring decimals. Pending amounts are always derived
// from invoice, received and deducted amounts and are never stored.
package procurement
