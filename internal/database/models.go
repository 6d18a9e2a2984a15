package database

import (
	"time"

	"gorm.io/datatypes"
)

type UserModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Phone        string    `gorm:"column:phone"`
	ProfileImage string    `gorm:"column:profile_image"`
	AvatarKey    string    `gorm:"column:avatar_key"`
	IsAdmin      bool      `gorm:"column:is_admin;not null;default:false;index"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (UserModel) TableName() string { return "users" }

type PropertyModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	HostID       int64     `gorm:"column:host_id;not null;index"`
	Title        string    `gorm:"column:title;not null"`
	Description  string    `gorm:"column:description;type:text"`
	Address      string    `gorm:"column:address"`
	City         string    `gorm:"column:city;index"`
	State        string    `gorm:"column:state"`
	Country      string    `gorm:"column:country"`
	RentPerDay   float64   `gorm:"column:rent_per_day;not null"`
	MaxGuests    int       `gorm:"column:max_guests;not null"`
	PropertyType string    `gorm:"column:property_type;size:16;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (PropertyModel) TableName() string { return "properties" }

type HouseModel struct {
	PropertyID    int64 `gorm:"column:property_id;primaryKey;autoIncrement:false"`
	TotalBedrooms int   `gorm:"column:total_bedrooms;not null"`
}

func (HouseModel) TableName() string { return "houses" }

type FlatModel struct {
	PropertyID int64 `gorm:"column:property_id;primaryKey;autoIncrement:false"`
	TotalRooms int   `gorm:"column:total_rooms;not null"`
}

func (FlatModel) TableName() string { return "flats" }

type RoomModel struct {
	PropertyID int64 `gorm:"column:property_id;primaryKey;autoIncrement:false"`
	TotalBeds  int   `gorm:"column:total_beds;not null"`
}

func (RoomModel) TableName() string { return "rooms" }

type PictureModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	PropertyID int64     `gorm:"column:property_id;not null;index"`
	URL        string    `gorm:"column:url;not null"`
	StorageKey string    `gorm:"column:storage_key"`
	IsPrimary  bool      `gorm:"column:is_primary;not null;default:false"`
	Position   int       `gorm:"column:position;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (PictureModel) TableName() string { return "pictures" }

type FacilityModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	Icon      string    `gorm:"column:icon"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (FacilityModel) TableName() string { return "facilities" }

type PropertyFacilityModel struct {
	PropertyID int64 `gorm:"column:property_id;primaryKey;autoIncrement:false"`
	FacilityID int64 `gorm:"column:facility_id;primaryKey;autoIncrement:false;index"`
}

func (PropertyFacilityModel) TableName() string { return "property_facilities" }

type BookingModel struct {
	ID         int64          `gorm:"column:id;primaryKey"`
	PropertyID int64          `gorm:"column:property_id;not null;index:idx_bookings_property_dates"`
	GuestID    int64          `gorm:"column:guest_id;not null;index"`
	StartDate  datatypes.Date `gorm:"column:start_date;not null;index:idx_bookings_property_dates"`
	EndDate    datatypes.Date `gorm:"column:end_date;not null;index:idx_bookings_property_dates"`
	Guests     int            `gorm:"column:guests;not null"`
	TotalPrice float64        `gorm:"column:total_price;not null"`
	Status     string         `gorm:"column:status;size:16;not null;index"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
}

func (BookingModel) TableName() string { return "bookings" }

type ReviewModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	BookingID  int64     `gorm:"column:booking_id;not null;uniqueIndex"`
	PropertyID int64     `gorm:"column:property_id;not null;index"`
	UserID     int64     `gorm:"column:user_id;not null;index"`
	Rating     int       `gorm:"column:rating;not null"`
	Comment    string    `gorm:"column:comment;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (ReviewModel) TableName() string { return "reviews" }

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&UserModel{},
		&PropertyModel{},
		&HouseModel{},
		&FlatModel{},
		&RoomModel{},
		&PictureModel{},
		&FacilityModel{},
		&PropertyFacilityModel{},
		&BookingModel{},
		&ReviewModel{},
	}
}
