package worker

import (
	"github.com/SMKJI/simba-ji-sub000/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartRealtimeWorker hooks the realtime broadcaster into the event
// stream.
func StartRealtimeWorker(realtimeService *service.RealtimeService) {
	if realtimeService == nil {
		return
	}
	realtimeService.Register()
}
