package ws

// Message is a client request
type Message struct {
	Type    string `json:"type"`
	Snippet string `json:"snippet,omitempty"`
}

// Event is a server message
type Event struct {
	Type         string   `json:"type"`
	ConnectionID string   `json:"connection_id,omitempty"`
	RunID        string   `json:"run_id,omitempty"`
	Line         *string  `json:"line,omitempty"`
	Status       string   `json:"status,omitempty"`
	Errors       []string `json:"errors,omitempty"`
	DurationMs   int64    `json:"duration_ms,omitempty"`
	Message      string   `json:"message,omitempty"`
	Timestamp    int64    `json:"timestamp"`
}

const (
	TypeRun    = "run"
	TypePing   = "ping"
	TypeSystem = "system"
	TypeOutput = "output"
	TypeDone   = "done"
	TypePong   = "pong"
	TypeError  = "error"
)
