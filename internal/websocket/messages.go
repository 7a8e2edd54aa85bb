package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	TypeBookingCreated       MessageType = "booking.created"
	TypeBookingStatusChanged MessageType = "booking.status_changed"
	TypeBookingDeleted       MessageType = "booking.deleted"
	TypeCustomersReconciled  MessageType = "customers.reconciled"
	TypeNotification         MessageType = "notification"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// BookingPayload is the payload for booking.created events.
type BookingPayload struct {
	BookingID  string  `json:"bookingId"`
	CabinID    string  `json:"cabinId"`
	CustomerID string  `json:"customerId"`
	CheckIn    string  `json:"checkIn"`
	CheckOut   string  `json:"checkOut"`
	Status     string  `json:"status"`
	TotalPrice float64 `json:"totalPrice"`
}

// BookingStatusPayload is the payload for booking.status_changed events.
type BookingStatusPayload struct {
	BookingID      string `json:"bookingId"`
	CabinID        string `json:"cabinId"`
	PreviousStatus string `json:"previousStatus"`
	NewStatus      string `json:"newStatus"`
}

// BookingDeletedPayload is the payload for booking.deleted events.
type BookingDeletedPayload struct {
	BookingID string `json:"bookingId"`
}

// ReconcilePayload is the payload for customers.reconciled events.
type ReconcilePayload struct {
	Customers int      `json:"customers"`
	Updated   int      `json:"updated"`
	Failed    []string `json:"failed"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}
