package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/SMKJI/simba-ji-sub000/internal/config"
	"github.com/SMKJI/simba-ji-sub000/internal/events"
)

// RealtimePublisher pushes a payload onto a named channel.
type RealtimePublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// RealtimeService mirrors every domain event onto Redis pub/sub so
// dashboards can follow table changes. Channels are keyed per table as
// <prefix>:<table>.
type RealtimeService struct {
	publisher  RealtimePublisher
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.RealtimeConfig
}

// NewRealtimeService creates the broadcaster.
func NewRealtimeService(publisher RealtimePublisher, dispatcher events.Dispatcher, logger *zap.Logger, cfg config.RealtimeConfig) *RealtimeService {
	return &RealtimeService{
		publisher:  publisher,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// Register hooks the broadcaster into the dispatcher. Disabled config
// leaves the dispatcher untouched.
func (s *RealtimeService) Register() {
	if !s.cfg.Enabled || s.dispatcher == nil || s.publisher == nil {
		return
	}
	s.dispatcher.SubscribeAll(s.broadcast)
}

// Channel returns the pub/sub channel name for a table.
func (s *RealtimeService) Channel(table string) string {
	prefix := s.cfg.ChannelPrefix
	if prefix == "" {
		prefix = "realtime"
	}
	return prefix + ":" + table
}

func (s *RealtimeService) broadcast(ctx context.Context, event events.Event) error {
	if event.Table == "" {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	channel := s.Channel(event.Table)
	if err := s.publisher.Publish(ctx, channel, payload); err != nil {
		if s.logger != nil {
			s.logger.Warn("realtime publish failed",
				zap.String("channel", channel),
				zap.Error(err))
		}
		return err
	}
	return nil
}
