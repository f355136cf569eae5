package entity

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus tracks whether payment for an order has been verified.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentRejected  PaymentStatus = "rejected"
)

// PaymentMethod selects how the customer pays for an order.
type PaymentMethod string

const (
	BankTransfer   PaymentMethod = "bank_transfer"
	CashOnDelivery PaymentMethod = "cash_on_delivery"
	RetailPayment  PaymentMethod = "retail_payment"
)

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case BankTransfer, CashOnDelivery, RetailPayment:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentConfirmed, PaymentRejected:
		return true
	}
	return false
}

// transitions maps each status to the set of statuses it may move to.
// cancelled and delivered are terminal and accept no further writes.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing},
	StatusPreparing: {StatusShipped},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s OrderStatus) bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed from s.
func IsTerminal(s OrderStatus) bool {
	return len(transitions[s]) == 0 && ValidStatus(s)
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
