package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/SMKJI/simba-ji-sub000/internal/config"
	"github.com/SMKJI/simba-ji-sub000/internal/events"
)

// NotificationService emits notifications for domain events: the group
// invite after assignment, ticket updates and queue announcements.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventGroupAssigned, n.handleGroupAssigned)
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventTicketMessageAdded, n.handleTicketEvent)
	n.dispatcher.Subscribe(events.EventQueueTicketCalled, n.handleQueueAnnouncement)
	n.dispatcher.Subscribe(events.EventQueueTicketRecalled, n.handleQueueAnnouncement)
}

func (n *NotificationService) handleGroupAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("GroupAssigned",
		zap.String("applicant_id", event.EntityID),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("entity_id", event.EntityID),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleQueueAnnouncement(ctx context.Context, event events.Event) error {
	n.logger.Info("QueueAnnouncement",
		zap.String("queue_ticket_id", event.EntityID),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("entity_id", event.EntityID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("entity_id", event.EntityID),
		zap.String("event_type", string(event.Type)))
}
