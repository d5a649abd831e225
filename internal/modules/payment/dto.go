package payment

import "strconv"

// Event kinds the reconciliation subsystem understands. Everything else is
// acknowledged and ignored.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventRefundCreated     = "refund.created"
	EventRefundUpdated     = "refund.updated"
)

// Event is the gateway's webhook envelope.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	Object EventObject `json:"object"`
}

// EventObject is the union of the fields checkout and refund events carry.
type EventObject struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent,omitempty"`
	AmountTotal   int64             `json:"amount_total,omitempty"`
	Amount        int64             `json:"amount,omitempty"`
	Currency      string            `json:"currency,omitempty"`
	Status        string            `json:"status,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// BookingIDFromMetadata extracts the booking id the checkout session was
// created with. Zero when absent or not numeric.
func (o EventObject) BookingIDFromMetadata() int64 {
	raw, ok := o.Metadata["booking_id"]
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// WebhookOutcome tells the HTTP layer how an event was folded into the ledger.
type WebhookOutcome struct {
	Handled bool   `json:"handled"`
	Changed bool   `json:"changed"`
	Detail  string `json:"detail,omitempty"`
}

type InitCheckoutRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
}

type InitCheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}
