package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"github.com/augesrob/Badger-sub000/internal/reconcile"
	"github.com/augesrob/Badger-sub000/internal/store"
)

// Dispatcher receives the movement changes produced by accepted writes.
// Dispatch runs on the request path and must not block.
type Dispatcher interface {
	Dispatch(change reconcile.StatusChange)
}

// Handler holds shared dependencies for the document store handlers.
type Handler struct {
	store      store.Store
	dispatcher Dispatcher
	webpush    *webpush.Options
}

// NewHandler creates a new API handler. dispatcher may be nil when push
// notifications are disabled.
func NewHandler(s store.Store, dispatcher Dispatcher, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:      s,
		dispatcher: dispatcher,
		webpush:    webpushOptions,
	}
}
