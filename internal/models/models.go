package models

import (
	"time"
)

// Role is the privilege tier a user holds within a site. The ordering
// viewer < admin < owner is encoded once, here; callers must use AtLeast
// instead of comparing role strings.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

var roleRank = map[Role]int{
	RoleViewer: 0,
	RoleAdmin:  1,
	RoleOwner:  2,
}

// AtLeast reports whether r grants at least the privilege of min.
// Unknown roles rank below viewer and never satisfy any requirement.
func (r Role) AtLeast(min Role) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	minRank, ok := roleRank[min]
	if !ok {
		return false
	}
	return rank >= minRank
}

// User represents an account that can own site memberships
type User struct {
	ID           string     `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	FullName     string     `gorm:"size:120;not null" json:"full_name"`
	Username     string     `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone        *string    `gorm:"size:20" json:"phone,omitempty"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Status       string     `gorm:"size:16;not null;default:active" json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Site is a tenant workspace holding devices
type Site struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"site_id"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	AddressLine *string   `gorm:"size:255" json:"address_line,omitempty"`
	City        *string   `gorm:"size:120" json:"city,omitempty"`
	Country     *string   `gorm:"size:120" json:"country,omitempty"`
	Status      string    `gorm:"size:16;not null;default:active" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SiteUser binds a user to a site with a role. The composite primary key
// guarantees at most one membership per (site, user) pair.
type SiteUser struct {
	SiteID    string    `gorm:"type:varchar(36);primaryKey" json:"site_id"`
	UserID    string    `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	Role      Role      `gorm:"size:16;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`

	Site *Site `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// SiteWithRole is a site row joined with the requesting user's own role
type SiteWithRole struct {
	Site   `gorm:"embedded"`
	MyRole Role `gorm:"column:my_role" json:"my_role"`
}

// Device belongs to exactly one site. Only the bcrypt hash of its
// enrollment secret is ever stored; the plaintext exists once, in the
// enrollment response.
type Device struct {
	ID           string     `gorm:"type:varchar(36);primaryKey" json:"device_id"`
	SiteID       string     `gorm:"type:varchar(36);not null;index" json:"site_id"`
	SerialNumber string     `gorm:"size:120;uniqueIndex;not null" json:"serial_number"`
	DeviceType   string     `gorm:"size:100;not null" json:"device_type"`
	SecretHash   string     `gorm:"size:255;not null" json:"-"`
	Status       string     `gorm:"size:16;not null;default:offline" json:"status"`
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Site *Site `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Sensor belongs to exactly one device
type Sensor struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"sensor_id"`
	DeviceID      string    `gorm:"type:varchar(36);not null;index" json:"device_id"`
	SensorType    string    `gorm:"size:32;not null" json:"sensor_type"`
	LocationLabel *string   `gorm:"size:120" json:"location_label,omitempty"`
	IsEnabled     bool      `gorm:"not null;default:true" json:"is_enabled"`
	Status        string    `gorm:"size:16;not null;default:ok" json:"status"`
	CreatedAt     time.Time `json:"created_at"`

	Device *Device `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// SensorReading is an immutable telemetry sample. RecordedAt is the
// device-reported timestamp, ReceivedAt is assigned by the server.
type SensorReading struct {
	ID          uint       `gorm:"primaryKey" json:"reading_id"`
	SensorID    string     `gorm:"type:varchar(36);not null;index" json:"sensor_id"`
	Value       float64    `gorm:"not null" json:"value"`
	Unit        *string    `gorm:"size:32" json:"unit,omitempty"`
	RecordedAt  *time.Time `json:"recorded_at,omitempty"`
	ReceivedAt  time.Time  `gorm:"not null" json:"received_at"`
	QualityFlag string     `gorm:"size:16;not null;default:ok" json:"quality_flag"`

	Sensor *Sensor `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
