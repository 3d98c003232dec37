package bookingform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"bookingform/internal/form"
	"bookingform/internal/pkg/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 16 * 1024
)

const (
	EventFieldChanged = "field_changed"
	EventPickerOpened = "picker_opened"
	EventPickerClosed = "picker_closed"
	EventSubmit       = "submit"

	EventState     = "state"
	EventSubmitted = "submitted"
	EventError     = "error"
)

// ClientEvent is a message from a form widget.
type ClientEvent struct {
	Type      string          `json:"type"`
	Field     form.Field      `json:"field,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	Date      string          `json:"date,omitempty"`
	Dismissed bool            `json:"dismissed,omitempty"`
}

// ServerEvent is pushed to widgets observing a form.
type ServerEvent struct {
	Type    string      `json:"type"`
	FormID  string      `json:"form_id"`
	Payload interface{} `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type WSHandler struct {
	service  *Service
	upgrader websocket.Upgrader
}

// NewWSHandler accepts connections from the given origins; none means any.
func NewWSHandler(service *Service, origins ...string) *WSHandler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

func (h *WSHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/forms/:id", h.HandleWebSocket)
}

// HandleWebSocket binds a widget to a form session: client events mutate the
// form, and every resulting state is pushed back.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	id := c.Param("id")
	states, cancel, err := h.service.Watch(id)
	if err != nil {
		response.NotFound(c, "FORM_NOT_FOUND", "Form session not found or expired")
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	entry := log.WithField("form_id", id)
	entry.Debug("widget connected")

	direct := make(chan ServerEvent, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer conn.Close() // unblocks readPump
		h.writePump(conn, id, states, direct)
	}()
	h.readPump(conn, id, direct, done)

	entry.Debug("widget disconnected")
}

func (h *WSHandler) readPump(conn *websocket.Conn, id string, direct chan<- ServerEvent, done <-chan struct{}) {
	defer close(direct)

	reply := func(ev ServerEvent) bool {
		select {
		case direct <- ev:
			return true
		case <-done:
			return false
		}
	}

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithField("form_id", id).WithError(err).Warn("websocket read failed")
			}
			return
		}

		var ev ClientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			if !reply(errorEvent(id, "VALIDATION_ERROR", "Invalid message")) {
				return
			}
			continue
		}
		if out, ok := h.apply(id, ev); ok && !reply(out) {
			return
		}
	}
}

// apply runs one client event. State changes reach the client through the
// watch channel; only errors and submit results are answered directly.
func (h *WSHandler) apply(id string, ev ClientEvent) (ServerEvent, bool) {
	var err error
	switch ev.Type {
	case EventFieldChanged:
		_, err = h.service.SetField(id, ev.Field, ev.Value)
	case EventPickerOpened:
		_, err = h.service.OpenPicker(id, ev.Field)
	case EventPickerClosed:
		_, err = h.service.ClosePicker(id, ev.Field, PickerRequest{Date: ev.Date, Dismissed: ev.Dismissed})
	case EventSubmit:
		var p form.Payload
		p, _, err = h.service.Submit(context.Background(), id)
		if err == nil {
			return ServerEvent{Type: EventSubmitted, FormID: id, Payload: toPayloadSummary(p)}, true
		}
	default:
		return errorEvent(id, "VALIDATION_ERROR", "Unknown event type"), true
	}

	switch {
	case err == nil:
		return ServerEvent{}, false
	case errors.Is(err, form.ErrFormInvalid):
		return errorEvent(id, "FORM_INVALID", "Please correct the highlighted fields"), true
	case errors.Is(err, ErrSessionNotFound):
		return errorEvent(id, "FORM_NOT_FOUND", "Form session not found or expired"), true
	case errors.Is(err, ErrBadValue), errors.Is(err, form.ErrValueType), errors.Is(err, form.ErrNotDateField):
		return errorEvent(id, "VALIDATION_ERROR", err.Error()), true
	}
	log.WithField("form_id", id).WithError(err).Error("websocket event failed")
	return errorEvent(id, "INTERNAL_ERROR", "Failed to process form"), true
}

func (h *WSHandler) writePump(conn *websocket.Conn, id string, states <-chan form.State, direct <-chan ServerEvent) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	write := func(ev ServerEvent) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(ev) == nil
	}

	for {
		select {
		case st, ok := <-states:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "form closed"))
				return
			}
			if !write(ServerEvent{Type: EventState, FormID: id, Payload: toStateResponse(id, st)}) {
				return
			}
		case ev, ok := <-direct:
			if !ok {
				return
			}
			if !write(ev) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func errorEvent(id, code, message string) ServerEvent {
	return ServerEvent{Type: EventError, FormID: id, Payload: ErrorPayload{Code: code, Message: message}}
}
