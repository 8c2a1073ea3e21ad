// Package instrument configures OpenTelemetry tracing, metrics and structured
// logging for the credential engine.
//
// New returns a noop Instrumentation when telemetry is disabled; logging is
// still routed through the masking JSON handler so secrets never reach stdout.
package instrument
