package model

import "encoding/json"

// PushSubscription mirrors the browser's PushSubscriptionJSON shape.
type PushSubscription struct {
	Endpoint string            `json:"endpoint" binding:"required,url"`
	Keys     map[string]string `json:"keys" binding:"required"`
}

// SendNotificationRequest carries one web-push message: the target
// subscription and an opaque JSON payload forwarded verbatim.
type SendNotificationRequest struct {
	Subscription PushSubscription `json:"subscription" binding:"required"`
	Payload      json.RawMessage  `json:"payload" binding:"required"`
}
