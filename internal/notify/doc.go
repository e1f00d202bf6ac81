// Package notify publishes terminal job outcomes.
//
// Exactly one event is published per validation run: SUCCESS or FAILURE, with
// structured attributes (format, refid, service, outcome, and on failure the
// error kind and message) so consumers never parse free text. The default
// implementation posts JSON to a configured HTTP topic and degrades to a
// no-op when no endpoint is configured. Publishing is fire-and-forget from
// the orchestrator's perspective.
package notify
