package worker

import (
	"github.com/spec-kit/repair-ticket-service/internal/cache"
	"github.com/spec-kit/repair-ticket-service/internal/events"
	"github.com/spec-kit/repair-ticket-service/internal/service"
)

// StartNotificationWorker registers every event subscriber on dispatcher.
func StartNotificationWorker(dispatcher events.Dispatcher, notifications *service.NotificationService, stats *cache.StatsCache, forwarder *events.KafkaForwarder) {
	if dispatcher == nil {
		return
	}
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	stats.Register(dispatcher)
	forwarder.Register(dispatcher)
}
