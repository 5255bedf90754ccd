package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoomStatusAvailable   = "disponible"
	RoomStatusOccupied    = "occupee"
	RoomStatusReserved    = "reservee"
	RoomStatusMaintenance = "maintenance"
	RoomStatusOutOfOrder  = "hors_service"

	// DefaultCurrency is applied to every room; the price column has no other unit.
	DefaultCurrency = "XAF"
)

var roomStatuses = map[string]bool{
	RoomStatusAvailable:   true,
	RoomStatusOccupied:    true,
	RoomStatusReserved:    true,
	RoomStatusMaintenance: true,
	RoomStatusOutOfOrder:  true,
}

// IsValidRoomStatus reports whether s is one of the known occupancy states.
func IsValidRoomStatus(s string) bool {
	return roomStatuses[s]
}

// Image is embedded in Room.Images and stored as part of the room's JSON column.
type Image struct {
	URL          string `json:"url"`
	CloudinaryID string `json:"cloudinaryId"`
	Alt          string `json:"alt"`
	IsPrimary    bool   `json:"isPrimary"`
	Order        int    `json:"order"`
}

type Room struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// number is unique across active and inactive rooms; deleted rooms keep their number.
	Number   string `gorm:"column:number;uniqueIndex;size:50;not null" json:"number"`
	Name     string `gorm:"size:150" json:"name"`
	Type     string `gorm:"size:100" json:"type"`
	Category string `gorm:"size:100" json:"category"`

	Capacity int     `json:"capacity"`
	Price    float64 `json:"price"`
	Currency string  `gorm:"size:10" json:"currency"`

	Size        string `gorm:"size:50" json:"size"`
	BedType     string `gorm:"column:bed_type;size:100" json:"bedType"`
	Status      string `gorm:"size:30;index" json:"status"`
	Description string `gorm:"type:text" json:"description"`

	Amenities datatypes.JSONSlice[string] `json:"amenities"`
	Images    datatypes.JSONSlice[Image]  `json:"images"`

	IsActive bool `gorm:"column:is_active;not null;index" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeImages re-sequences Order to the slice position and makes sure exactly
// one image carries IsPrimary: the first flagged one wins, otherwise the first image.
func NormalizeImages(images []Image) []Image {
	out := make([]Image, len(images))
	copy(out, images)

	primary := -1
	for i := range out {
		out[i].Order = i
		if out[i].IsPrimary {
			if primary >= 0 {
				out[i].IsPrimary = false
				continue
			}
			primary = i
		}
	}
	if primary < 0 && len(out) > 0 {
		out[0].IsPrimary = true
	}
	return out
}
