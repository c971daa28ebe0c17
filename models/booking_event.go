package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BookingEventType string

const (
	EventCreated             BookingEventType = "created"
	EventCheckedIn           BookingEventType = "checked_in"
	EventConsumptionAdded    BookingEventType = "consumption_added"
	EventConsumptionUpdated  BookingEventType = "consumption_updated"
	EventConsumptionRemoved  BookingEventType = "consumption_removed"
	EventConsumptionPaid     BookingEventType = "consumption_paid"
	EventOverstayRegularized BookingEventType = "overstay_regularized"
	EventExtended            BookingEventType = "extended"
	EventExtraTimeCharged    BookingEventType = "extra_time_charged"
	EventPaymentApplied      BookingEventType = "payment_applied"
	EventCheckedOut          BookingEventType = "checked_out"
	EventCancelled           BookingEventType = "cancelled"
)

// BookingEvent is the ordered, append-only audit trail of a booking's
// billing events.
type BookingEvent struct {
	ID         string           `gorm:"type:char(36);primaryKey" json:"id"`
	BookingID  uint             `gorm:"not null;uniqueIndex:idx_booking_event_seq" json:"booking_id"`
	Sequence   int              `gorm:"not null;uniqueIndex:idx_booking_event_seq" json:"sequence"`
	EventType  BookingEventType `gorm:"type:varchar(40);not null" json:"event_type"`
	Payload    datatypes.JSON   `json:"payload"`
	ActorID    uint             `json:"actor_id"`
	OccurredAt time.Time        `gorm:"not null" json:"occurred_at"`
}

func (e *BookingEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
