package service

import (
	"context"
	"errors"
	"fmt"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"
	"github.com/suneung/mocktrack-backend/internal/config"
	"github.com/suneung/mocktrack-backend/internal/model"
)

// ErrPushNotConfigured is returned when the VAPID keypair is missing.
var ErrPushNotConfigured = errors.New("push notifications not configured")

// NotificationService sends browser push messages via VAPID. It is a
// fire-and-forget passthrough: one attempt, no retry, failures logged.
type NotificationService struct {
	cfg *config.Config
	log zerolog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(cfg *config.Config, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		cfg: cfg,
		log: log.With().Str("component", "notification_service").Logger(),
	}
}

// Send delivers one push message to the given subscription. The payload
// is forwarded verbatim as JSON.
func (s *NotificationService) Send(ctx context.Context, req *model.SendNotificationRequest) error {
	if s.cfg.VAPIDPublicKey == "" || s.cfg.VAPIDPrivateKey == "" {
		return ErrPushNotConfigured
	}

	sub := &webpush.Subscription{
		Endpoint: req.Subscription.Endpoint,
		Keys: webpush.Keys{
			Auth:   req.Subscription.Keys["auth"],
			P256dh: req.Subscription.Keys["p256dh"],
		},
	}

	resp, err := webpush.SendNotificationWithContext(ctx, req.Payload, sub, &webpush.Options{
		Subscriber:      s.cfg.VAPIDSubject,
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
		TTL:             60,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Push send failed")
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		s.log.Error().Int("status", resp.StatusCode).Msg("Push endpoint rejected the message")
		return fmt.Errorf("push endpoint returned %d", resp.StatusCode)
	}

	s.log.Debug().Int("status", resp.StatusCode).Msg("Push sent")
	return nil
}
