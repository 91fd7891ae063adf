package views

import (
	"sync"
	"time"
)

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// ToastDuration is how long a toast stays visible.
const ToastDuration = 5 * time.Second

// Toast is a transient notification.
type Toast struct {
	Message   string
	Kind      ToastKind
	ExpiresAt time.Time
}

// Toasts holds the single visible toast. A new toast replaces the old one.
type Toasts struct {
	mu      sync.Mutex
	now     func() time.Time
	current Toast
}

func NewToasts(now func() time.Time) *Toasts {
	if now == nil {
		now = time.Now
	}
	return &Toasts{now: now}
}

func (t *Toasts) Success(msg string) { t.show(msg, ToastSuccess) }

func (t *Toasts) Error(msg string) { t.show(msg, ToastError) }

func (t *Toasts) show(msg string, kind ToastKind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = Toast{Message: msg, Kind: kind, ExpiresAt: t.now().Add(ToastDuration)}
}

// Current returns the visible toast, if any has not yet expired.
func (t *Toasts) Current() (Toast, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current.Message == "" || !t.now().Before(t.current.ExpiresAt) {
		return Toast{}, false
	}
	return t.current, true
}

func (t *Toasts) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = Toast{}
}
