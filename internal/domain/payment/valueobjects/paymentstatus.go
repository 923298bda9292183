package valueobjects

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusExpired  PaymentStatus = "expired"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusExpired, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

func (s PaymentStatus) IsPending() bool {
	return s == PaymentStatusPending
}

func (s PaymentStatus) IsPaid() bool {
	return s == PaymentStatusPaid
}

// IsFinal reports whether no further transition is allowed. A paid payment can
// still be refunded, so it is not final.
func (s PaymentStatus) IsFinal() bool {
	return s == PaymentStatusExpired || s == PaymentStatusRefunded
}

func (s PaymentStatus) String() string {
	return string(s)
}
