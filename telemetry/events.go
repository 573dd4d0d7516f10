package telemetry

import (
	"context"

	"github.com/KOMKZ/go-yogan-chat/event"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/KOMKZ/go-yogan-chat/message"
	"github.com/KOMKZ/go-yogan-chat/user"
	"go.uber.org/zap"
)

// SubscribeActivity counts and logs business events off the request path
func SubscribeActivity(d event.Dispatcher, m *Metrics, log *logger.CtxZapLogger) {
	on := func(name string, fn func(ctx context.Context, ev event.Event)) {
		d.Subscribe(name, event.ListenerFunc(func(ctx context.Context, ev event.Event) error {
			fn(ctx, ev)
			return nil
		}), event.WithAsync())
	}

	on(user.EventCreated, func(ctx context.Context, ev event.Event) {
		e := ev.(*user.CreatedEvent)
		m.UsersRegistered.Inc()
		log.InfoCtx(ctx, "user registered", zap.Int64("user_id", e.User.ID), zap.String("username", e.User.Username))
	})
	on(user.EventLoggedIn, func(ctx context.Context, ev event.Event) {
		e := ev.(*user.LoggedInEvent)
		m.UsersLoggedIn.Inc()
		log.InfoCtx(ctx, "user logged in", zap.Int64("user_id", e.UserID), zap.String("username", e.Username))
	})
	on(message.EventCreated, func(ctx context.Context, ev event.Event) {
		e := ev.(*message.Event)
		m.MessagesCreated.Inc()
		log.InfoCtx(ctx, "message created",
			zap.Int64("message_id", e.Message.ID),
			zap.Int64("sender_id", e.Message.SenderID),
			zap.Int64("recipient_id", e.Message.RecipientID))
	})
	on(message.EventRead, func(ctx context.Context, ev event.Event) {
		e := ev.(*message.Event)
		log.InfoCtx(ctx, "message read", zap.Int64("message_id", e.Message.ID), zap.Int64("user_id", e.Message.RecipientID))
	})
	on(message.EventDeleted, func(ctx context.Context, ev event.Event) {
		e := ev.(*message.Event)
		log.InfoCtx(ctx, "message deleted", zap.Int64("message_id", e.Message.ID), zap.Int64("user_id", e.Message.SenderID))
	})
}
