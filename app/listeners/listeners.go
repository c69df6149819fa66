// Package listeners reacts to catalog events: it drops stale list caches
// and pushes change notifications to connected dashboard clients.
package listeners

import (
	"encoding/json"

	"github.com/matjarhq/matjar/app/services"
	"github.com/matjarhq/matjar/pkg/cache"
	"github.com/matjarhq/matjar/pkg/event"
	"github.com/matjarhq/matjar/pkg/logger"
	"github.com/matjarhq/matjar/pkg/ws"
)

// Register wires every listener. Call once at startup, before the first
// event can fire.
func Register() {
	for _, name := range []string{
		services.EventNewsCreated,
		services.EventNewsDeleted,
	} {
		event.Listen(name, invalidateNewsLists(name))
		event.Listen(name, broadcast(name))
	}

	for _, name := range []string{
		services.EventAdCreated,
		services.EventAdUpdated,
		services.EventAdDeleted,
	} {
		event.Listen(name, broadcast(name))
	}
}

// invalidateNewsLists forgets every cached news page so the next list
// request sees the change.
func invalidateNewsLists(name string) event.Handler {
	return func(payload interface{}) {
		if err := cache.ForgetPrefix(services.NewsCachePrefix); err != nil {
			logger.Warn("listener: cache invalidation failed", "event", name, "error", err)
		}
	}
}

// broadcast pushes the event to every connected websocket client as a
// small JSON envelope.
func broadcast(name string) event.Handler {
	return func(payload interface{}) {
		msg, err := json.Marshal(map[string]interface{}{
			"event":   name,
			"payload": payload,
		})
		if err != nil {
			logger.Warn("listener: broadcast marshal failed", "event", name, "error", err)
			return
		}
		select {
		case ws.CatalogHub.Broadcast <- msg:
		default:
			logger.Warn("listener: broadcast channel full, dropping", "event", name)
		}
	}
}
