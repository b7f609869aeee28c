package orders

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentRefunded PaymentStatus = "Refunded"
)

type PaymentMethod string

const (
	MethodUPI            PaymentMethod = "UPI"
	MethodOnlineBanking  PaymentMethod = "Online Banking"
	MethodCashOnDelivery PaymentMethod = "Cash on Delivery"
)

// urutan fulfilment, dipakai hanya di strict mode
var rank = map[Status]int{
	StatusProcessing: 0,
	StatusShipped:    1,
	StatusDelivered:  2,
}

func ParseStatus(s string) (Status, error) {
	for st := range rank {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for _, ps := range []PaymentStatus{PaymentPending, PaymentPaid, PaymentRefunded} {
		if strings.EqualFold(string(ps), strings.TrimSpace(s)) {
			return ps, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// ParsePaymentMethod accepts display names ("Cash on Delivery") and
// API spellings ("cash_on_delivery", "cod").
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	norm := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(s))
	switch norm {
	case "upi":
		return MethodUPI, nil
	case "onlinebanking", "netbanking":
		return MethodOnlineBanking, nil
	case "cashondelivery", "cod":
		return MethodCashOnDelivery, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, s)
}

// CanTransition reports whether a fulfilment move keeps going forward.
// Only consulted when the ledger runs with strict transitions.
func CanTransition(from, to Status) bool {
	return rank[to] >= rank[from]
}

// PaymentPolicy maps a payment method to the payment status a new order starts with.
type PaymentPolicy map[PaymentMethod]PaymentStatus

func DefaultPaymentPolicy() PaymentPolicy {
	return PaymentPolicy{
		MethodUPI:            PaymentPaid,
		MethodOnlineBanking:  PaymentPaid,
		MethodCashOnDelivery: PaymentPending,
	}
}

func (p PaymentPolicy) StatusFor(m PaymentMethod) (PaymentStatus, error) {
	st, ok := p[m]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, m)
	}
	return st, nil
}
