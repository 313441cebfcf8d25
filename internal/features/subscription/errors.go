package subscription

import "errors"

var ErrSubscriptionNotFound = errors.New("subscription not found")

// Toggle result messages, kept verbatim for API compatibility with the
// legacy frontend.
const (
	MessageAdded   = "подписка добавлена"
	MessageRemoved = "подписка удалена"
)
