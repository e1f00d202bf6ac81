// Package services defines the error taxonomy shared by every validation step
// and the context annotations that thread job identity through the pipeline.
//
// Errors are classified by wrapping them with one of the exported sentinel
// markers via Wrap. The orchestrator does not recover individual kinds; the
// classification only drives the error attribute on failure notifications and
// the ledger record, so downstream consumers never parse message text.
package services
