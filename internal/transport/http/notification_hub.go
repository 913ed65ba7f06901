package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tanuja-67/vle-management/internal/domain"
)

// NotificationHub broadcasts user-facing notifications to websocket
// subscribers. It implements app.Notifier; publishing never blocks and the
// services never learn whether anyone was listening.
type NotificationHub struct {
	log      *zap.SugaredLogger
	upgrader websocket.Upgrader

	mu          sync.Mutex
	subscribers map[chan domain.Notification]struct{}
}

func NewNotificationHub(log *zap.SugaredLogger) *NotificationHub {
	return &NotificationHub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		subscribers: make(map[chan domain.Notification]struct{}),
	}
}

func (h *NotificationHub) Success(msg string) { h.publish(domain.NotifySuccess, msg) }
func (h *NotificationHub) Info(msg string)    { h.publish(domain.NotifyInfo, msg) }
func (h *NotificationHub) Error(msg string)   { h.publish(domain.NotifyError, msg) }

func (h *NotificationHub) publish(level domain.NotificationLevel, msg string) {
	n := domain.Notification{Level: level, Message: msg, At: time.Now()}
	h.log.Infow("notify", "level", level, "message", msg)

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- n:
		default:
			// Drop the oldest pending notification so slow clients never
			// block the workflow.
			select {
			case <-ch:
			default:
			}
			ch <- n
		}
	}
}

func (h *NotificationHub) subscribe() (chan domain.Notification, func()) {
	ch := make(chan domain.Notification, 16)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// ServeWS upgrades the request and streams notifications until the client
// disconnects.
func (h *NotificationHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch, cancel := h.subscribe()
	defer cancel()

	// Reader goroutine exists only to observe the close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for n := range ch {
		if err := conn.WriteJSON(n); err != nil {
			h.log.Debugw("ws write error", "error", err)
			return
		}
	}
}
