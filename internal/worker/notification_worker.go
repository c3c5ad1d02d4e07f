package worker

import (
	"github.com/gabriel-reiss/guildtickets/internal/events"
	"github.com/gabriel-reiss/guildtickets/internal/service"
)

// StartNotificationWorker registers the notification handlers on the
// dispatcher.
func StartNotificationWorker(notifications *service.NotificationService, dispatcher events.Dispatcher) {
	if notifications == nil {
		return
	}
	notifications.Register(dispatcher)
}
