package logfields

const (
	// Identifiers

	RunID    = "runID"
	WorkerID = "workerID"
	Endpoint = "endpoint"

	// Burn parameters and results

	Threads    = "threads"
	Duration   = "duration"
	Deadline   = "deadline"
	BatchSize  = "batchSize"
	Iterations = "iterations"
	ElapsedMs  = "elapsedMs"

	// HTTP

	Method  = "method"
	Path    = "path"
	Status  = "status"
	Latency = "latency"

	// Tracing

	TraceID = "traceID"
	SpanID  = "spanID"
)
