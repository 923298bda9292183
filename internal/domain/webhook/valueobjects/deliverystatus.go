package valueobjects

type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusRetrying  DeliveryStatus = "retrying"
	// DeliveryStatusFailed is terminal; the sweep never picks it up again.
	DeliveryStatusFailed DeliveryStatus = "failed"
)

func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusDelivered, DeliveryStatusRetrying, DeliveryStatusFailed:
		return true
	default:
		return false
	}
}

func (s DeliveryStatus) IsFinal() bool {
	return s == DeliveryStatusDelivered || s == DeliveryStatusFailed
}

func (s DeliveryStatus) String() string {
	return string(s)
}
