package models

// StressRequest carries the parameters of one /stress call. Negative values
// are passed through: they result in a run that does no work.
type StressRequest struct {
	ThreadCount     int `form:"threads"`
	DurationSeconds int `form:"duration"`
}

// StressResult summarizes one finished burn run.
type StressResult struct {
	RunID           string `json:"runId"`
	ThreadCount     int    `json:"threadCount"`
	TotalIterations uint64 `json:"totalIterations"`
	ElapsedMillis   int64  `json:"elapsedMillis"`

	// WaitInterrupted is set when the caller was cancelled while the
	// coordinator was joining workers. The totals are still complete.
	WaitInterrupted bool `json:"waitInterrupted"`
}

// StressResponse is returned by /stress on success.
type StressResponse struct {
	Status          string `json:"status"`
	Pattern         string `json:"pattern"`
	RunID           string `json:"runId"`
	ThreadsUsed     int    `json:"threadsUsed"`
	DurationSeconds int    `json:"durationSeconds"`
	TotalIterations uint64 `json:"totalIterations"`
	ElapsedMs       int64  `json:"elapsedMs"`
	WaitInterrupted bool   `json:"waitInterrupted"`
	Description     string `json:"description"`
}

// InfoResponse is the static payload served on /.
type InfoResponse struct {
	Application string            `json:"application"`
	Pattern     string            `json:"pattern"`
	Endpoints   map[string]string `json:"endpoints"`
	Parameters  map[string]string `json:"parameters"`
	Example     string            `json:"example"`
}

// EnvInfoResponse describes the host process, served on /info.
type EnvInfoResponse struct {
	Hostname       string `json:"hostname"`
	PID            int    `json:"pid"`
	ProcessorCount int    `json:"processorCount"`
	GOMAXPROCS     int    `json:"gomaxprocs"`
	OS             string `json:"os"`
	Arch           string `json:"arch"`
	GoVersion      string `json:"goVersion"`
	Timestamp      string `json:"timestamp"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is returned by all endpoints on failure.
type ErrorResponse struct {
	Mode    string `json:"mode"`
	TotalMs int64  `json:"totalMs"`
	Error   string `json:"error"`
}
