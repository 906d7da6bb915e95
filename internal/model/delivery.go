package model

import "time"

// ReminderDelivery records that a reminder for a half was delivered on a date.
type ReminderDelivery struct {
	Date        Date      `gorm:"primaryKey;size:10"`
	Half        Half      `gorm:"primaryKey;size:8"`
	DeliveredAt time.Time `gorm:"not null"`
}

// Deliveries is the set of halves already reminded on one date.
type Deliveries struct {
	Morning bool
	Evening bool
}

func (d Deliveries) Has(h Half) bool {
	if h == HalfEvening {
		return d.Evening
	}
	return d.Morning
}

func (d *Deliveries) Add(h Half) {
	if h == HalfEvening {
		d.Evening = true
		return
	}
	d.Morning = true
}
