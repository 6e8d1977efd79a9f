package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	SlotDateLayout = "2006-01-02"
	SlotTimeLayout = "15:04"
)

// DoctorAvailability is the slot set a doctor publishes. It is created on the
// first save and removed only by an explicit clear.
type DoctorAvailability struct {
	DoctorID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"doctor_id"`
	WalletAddress string     `gorm:"type:varchar(42);not null;index" json:"wallet_address"`
	TimeSlots     []TimeSlot `gorm:"foreignKey:DoctorID;references:DoctorID" json:"time_slots"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DoctorAvailability) TableName() string {
	return "doctor_availability"
}

// TimeSlot is one bookable interval. IsBooked only ever goes from false to
// true. HeldBy and HeldUntil record the booking attempt that currently
// reserves the slot.
type TimeSlot struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_time_slots_doctor_start,priority:1" json:"doctor_id"`
	Date      string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_time_slots_doctor_start,priority:2" json:"date"`
	StartTime string     `gorm:"type:varchar(5);not null;uniqueIndex:idx_time_slots_doctor_start,priority:3" json:"start_time"`
	EndTime   string     `gorm:"type:varchar(5);not null" json:"end_time"`
	IsBooked  bool       `gorm:"not null;default:false;index" json:"is_booked"`
	HeldBy    *uuid.UUID `gorm:"type:uuid" json:"held_by,omitempty"`
	HeldUntil *time.Time `json:"held_until,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (TimeSlot) TableName() string {
	return "time_slots"
}

// StartsAt combines the slot date and start time in loc.
func (s *TimeSlot) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(SlotDateLayout+" "+SlotTimeLayout, s.Date+" "+s.StartTime, loc)
}

// IsHeld reports whether an attempt holds the slot at now. A hold without
// HeldUntil is pinned while its session transaction is in flight.
func (s *TimeSlot) IsHeld(now time.Time) bool {
	if s.HeldBy == nil {
		return false
	}
	return s.HeldUntil == nil || s.HeldUntil.After(now)
}

// FilterAvailableSlots keeps the slots a patient may be offered: not booked
// and dated today or later in now's location. Dates use SlotDateLayout, so
// string comparison orders them chronologically.
func FilterAvailableSlots(slots []TimeSlot, now time.Time) []TimeSlot {
	today := now.Format(SlotDateLayout)
	available := make([]TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.IsBooked {
			continue
		}
		if slot.Date < today {
			continue
		}
		available = append(available, slot)
	}
	return available
}
