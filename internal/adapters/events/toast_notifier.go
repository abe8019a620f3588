package events

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/cafefinder/gateway/internal/domain/entities"
	redisclient "github.com/cafefinder/gateway/internal/infrastructure/clients/redis"
	"github.com/google/uuid"
)

const (
	toastChannel = "gateway:toasts"
	toastBuffer  = 50
)

// ToastNotifier implements the Notifier interface. Toasts land in a bounded
// in-memory ring, and when a Redis client is present each toast is also
// published so every gateway instance sees it.
type ToastNotifier struct {
	redis *redisclient.Client

	mu     sync.RWMutex
	recent []entities.Toast
}

// NewToastNotifier creates a toast notifier. The Redis client may be nil,
// in which case toasts stay process-local.
func NewToastNotifier(redis *redisclient.Client) *ToastNotifier {
	return &ToastNotifier{redis: redis}
}

// Success records a success toast.
func (n *ToastNotifier) Success(message string) {
	n.emit(entities.ToastSuccess, message)
}

// Error records an error toast.
func (n *ToastNotifier) Error(message string) {
	n.emit(entities.ToastError, message)
}

// Recent returns the buffered toasts, newest first.
func (n *ToastNotifier) Recent() []entities.Toast {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]entities.Toast, len(n.recent))
	for i, toast := range n.recent {
		out[len(n.recent)-1-i] = toast
	}
	return out
}

func (n *ToastNotifier) emit(level entities.ToastLevel, message string) {
	toast := entities.Toast{
		ID:        uuid.New().String(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	n.mu.Lock()
	n.recent = append(n.recent, toast)
	if len(n.recent) > toastBuffer {
		n.recent = n.recent[len(n.recent)-toastBuffer:]
	}
	n.mu.Unlock()

	if n.redis != nil {
		payload, err := json.Marshal(toast)
		if err != nil {
			return
		}
		if err := n.redis.Client().Publish(context.Background(), toastChannel, payload).Err(); err != nil {
			log.Printf("Warning: Failed to publish toast: %v", err)
		}
	}
}
