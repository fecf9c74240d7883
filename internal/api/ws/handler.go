package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/rubico-playground/internal/document"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/rubico-playground/internal/playground"
	"github.com/GriffinCanCode/rubico-playground/internal/shared/utils"
)

// Handler manages WebSocket connections
type Handler struct {
	assembler *document.Assembler
	loader    playground.Loader
	metrics   *monitoring.Metrics
	logger    *logging.Logger
	validator *utils.SnippetValidator
	upgrader  websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. Connections are accepted
// from origins, where "*" or an empty list accepts any origin.
func NewHandler(
	assembler *document.Assembler,
	loader playground.Loader,
	metrics *monitoring.Metrics,
	logger *logging.Logger,
	origins []string,
) *Handler {
	if assembler == nil {
		assembler = document.New(document.DefaultOptions())
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		assembler: assembler,
		loader:    loader,
		metrics:   metrics,
		logger:    logger.Component("ws"),
		validator: utils.DefaultSnippetValidator(),
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin(origins),
		},
	}
}

func checkOrigin(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, origin := range origins {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[origin] = true
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

// conn serializes writes to one client
type conn struct {
	ws      *websocket.Conn
	id      string
	mu      sync.Mutex
	metrics *monitoring.Metrics
}

func (c *conn) send(event Event) error {
	event.Timestamp = time.Now().Unix()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.RecordWSMessage("out", event.Type)
	return c.ws.WriteJSON(event)
}

func (c *conn) sendError(msg string) error {
	return c.send(Event{Type: TypeError, Message: msg})
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()
	ws.SetReadLimit(utils.MaxMessageSize)

	client := &conn{ws: ws, id: uuid.NewString(), metrics: h.metrics}
	logger := h.logger.With(zap.String("connection_id", client.id))

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()
	logger.Debug("websocket connected")

	reqCtx := c.Request.Context()

	client.send(Event{Type: TypeSystem, ConnectionID: client.id, Message: "connected"})

	for {
		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket read error", zap.Error(err))
			}
			break
		}
		h.metrics.RecordWSMessage("in", msg.Type)

		switch msg.Type {
		case TypeRun:
			h.handleRun(reqCtx, client, msg, logger)
		case TypePing:
			client.send(Event{Type: TypePong})
		default:
			client.sendError("unknown message type")
		}
	}
	logger.Debug("websocket disconnected")
}
