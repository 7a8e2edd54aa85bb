package websocket

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lodge-admin/backend/internal/customer"
	"github.com/lodge-admin/backend/internal/storage/models"
)

// EventBroadcaster turns domain events into WebSocket messages.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BookingCreated announces a new booking.
func (b *EventBroadcaster) BookingCreated(booking models.Booking) {
	b.broadcast(NewMessage(TypeBookingCreated, BookingPayload{
		BookingID:  booking.ID,
		CabinID:    booking.CabinID,
		CustomerID: booking.CustomerID,
		CheckIn:    booking.CheckIn.UTC().Format("2006-01-02"),
		CheckOut:   booking.CheckOut.UTC().Format("2006-01-02"),
		Status:     booking.Status,
		TotalPrice: booking.TotalPrice,
	}))
}

// BookingStatusChanged announces a status change.
func (b *EventBroadcaster) BookingStatusChanged(booking models.Booking, previousStatus string) {
	b.broadcast(NewMessage(TypeBookingStatusChanged, BookingStatusPayload{
		BookingID:      booking.ID,
		CabinID:        booking.CabinID,
		PreviousStatus: previousStatus,
		NewStatus:      booking.Status,
	}))
}

// BookingDeleted announces a removed booking.
func (b *EventBroadcaster) BookingDeleted(id string) {
	b.broadcast(NewMessage(TypeBookingDeleted, BookingDeletedPayload{BookingID: id}))
}

// CustomersReconciled announces a finished reconciliation run.
func (b *EventBroadcaster) CustomersReconciled(result customer.Result) {
	b.broadcast(NewMessage(TypeCustomersReconciled, ReconcilePayload{
		Customers: result.Customers,
		Updated:   result.Updated,
		Failed:    result.Failed,
	}))
	if n := len(result.Failed); n > 0 {
		b.BroadcastNotification("warning", "Customer reconcile incomplete",
			fmt.Sprintf("%d of %d customers could not be updated: %s", n, result.Customers, strings.Join(result.Failed, ", ")))
	}
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	b.broadcast(NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}))
}

func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		b.hub.logger.Error("encoding websocket message", zap.Error(err))
		return
	}

	b.hub.Broadcast(data)
}
