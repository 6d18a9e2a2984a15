package admin

import (
	"time"

	"staybook/internal/pkg/pagination"
)

type Stats struct {
	Users            int64            `json:"users"`
	Admins           int64            `json:"admins"`
	Properties       int64            `json:"properties"`
	Bookings         int64            `json:"bookings"`
	BookingsByStatus map[string]int64 `json:"bookings_by_status"`
	Revenue          float64          `json:"revenue"`
	Reviews          int64            `json:"reviews"`
	AverageRating    float64          `json:"average_rating"`
}

type UserRow struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	IsAdmin   bool      `db:"is_admin" json:"is_admin"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type PropertyRow struct {
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	City         string    `db:"city" json:"city"`
	PropertyType string    `db:"property_type" json:"property_type"`
	RentPerDay   float64   `db:"rent_per_day" json:"rent_per_day"`
	HostID       int64     `db:"host_id" json:"host_id"`
	HostName     string    `db:"host_name" json:"host_name"`
	Bookings     int64     `db:"bookings" json:"bookings"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type BookingRow struct {
	ID            int64     `db:"id" json:"id"`
	PropertyID    int64     `db:"property_id" json:"property_id"`
	PropertyTitle string    `db:"property_title" json:"property_title"`
	GuestID       int64     `db:"guest_id" json:"guest_id"`
	GuestName     string    `db:"guest_name" json:"guest_name"`
	StartDate     time.Time `db:"start_date" json:"start_date"`
	EndDate       time.Time `db:"end_date" json:"end_date"`
	Guests        int       `db:"guests" json:"guests"`
	TotalPrice    float64   `db:"total_price" json:"total_price"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type UserFilter struct {
	Search string
	Admin  *bool
}

type Page[T any] struct {
	Items      []T             `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

type SetAdminRequest struct {
	IsAdmin *bool `json:"is_admin"`
}
