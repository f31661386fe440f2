package domain

import "time"

type CheckoutState int

const (
	CheckoutFilling CheckoutState = iota
	CheckoutSubmitting
	CheckoutSucceeded
	CheckoutFailed
)

var checkoutStateNames = map[CheckoutState]string{
	CheckoutFilling:    "filling",
	CheckoutSubmitting: "submitting",
	CheckoutSucceeded:  "succeeded",
	CheckoutFailed:     "failed",
}

func (s CheckoutState) String() string {
	if name, ok := checkoutStateNames[s]; ok {
		return name
	}
	return "unknown"
}

var checkoutTransitions = map[CheckoutState]map[CheckoutState]struct{}{
	CheckoutFilling: {
		CheckoutSubmitting: {},
	},
	CheckoutSubmitting: {
		CheckoutSucceeded: {},
		CheckoutFailed:    {},
	},
	CheckoutFailed: {
		CheckoutSubmitting: {},
	},
	CheckoutSucceeded: {},
}

// CanTransition reports whether the checkout may move from s to next.
func (s CheckoutState) CanTransition(next CheckoutState) bool {
	_, ok := checkoutTransitions[s][next]
	return ok
}

// Editable reports whether customer details may still change.
func (s CheckoutState) Editable() bool {
	return s == CheckoutFilling || s == CheckoutFailed
}

// Confirmation is what a successful checkout hands back to the storefront.
type Confirmation struct {
	OrderNumber  string    `json:"orderNumber"`
	Message      string    `json:"message"`
	DeepLink     string    `json:"deepLink,omitempty"`
	RedirectPath string    `json:"redirectPath"`
	PlacedAt     time.Time `json:"placedAt"`
}

// Notification is the best-effort fan-out of a placed order.
type Notification struct {
	SessionID   string
	Tenant      Tenant
	Customer    Customer
	OrderNumber string
	Lines       []CartLine
	Message     string
	DeepLink    string
	PlacedAt    time.Time
}
