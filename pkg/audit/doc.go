// Package audit records the outcome of every attestation request.
//
// A Recorder logs each Entry through the AUDT subsystem and forwards it to
// any number of Sinks. FileSink writes JSON lines for later analysis,
// PostgresSink stores entries in the attestation_audit table and
// MemorySink keeps entries for tests.
package audit
