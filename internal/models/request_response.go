package models

import "time"

// Request models
type SignUpRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=120"`
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"omitempty,min=6,max=20"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type CreateSiteRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=120"`
	AddressLine *string `json:"address_line"`
	City        *string `json:"city"`
	Country     *string `json:"country"`
}

type UpdateSiteStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

type AddSiteMemberRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Role       Role   `json:"role" binding:"required,oneof=viewer admin owner"`
}

type UpdateSiteMemberRequest struct {
	Role Role `json:"role" binding:"required,oneof=viewer admin owner"`
}

type RegisterDeviceRequest struct {
	SerialNumber string `json:"serial_number" binding:"required,min=3,max=100"`
	DeviceType   string `json:"device_type" binding:"required,min=2,max=100"`
}

type DeviceAuthRequest struct {
	SerialNumber string `json:"serial_number" binding:"required,min=3,max=120"`
	Secret       string `json:"secret" binding:"required,min=10,max=500"`
}

type UpdateDeviceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=online offline maintenance"`
}

type CreateSensorRequest struct {
	SensorType    string  `json:"sensor_type" binding:"required,oneof=gas smoke flame motion door temp other"`
	LocationLabel *string `json:"location_label" binding:"omitempty,min=1,max=120"`
}

type UpdateSensorRequest struct {
	IsEnabled     *bool   `json:"is_enabled"`
	Status        *string `json:"status" binding:"omitempty,oneof=ok faulty disabled"`
	LocationLabel *string `json:"location_label" binding:"omitempty,max=120"`
}

type CreateReadingRequest struct {
	SensorID    string     `json:"sensor_id" binding:"required,uuid"`
	Value       *float64   `json:"value" binding:"required"`
	Unit        *string    `json:"unit" binding:"omitempty,min=1,max=32"`
	RecordedAt  *time.Time `json:"recorded_at"`
	QualityFlag *string    `json:"quality_flag" binding:"omitempty,oneof=ok suspect"`
}

// Response models
type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type UserResponse struct {
	User User `json:"user"`
}

type SiteResponse struct {
	Site Site `json:"site"`
}

type SiteListResponse struct {
	Sites []SiteWithRole `json:"sites"`
}

type MemberResponse struct {
	Member SiteUser `json:"member"`
}

// RegisterDeviceResponse carries the one-time plaintext device secret.
// It appears in exactly one response ever; only the hash is stored.
type RegisterDeviceResponse struct {
	Device       Device `json:"device"`
	DeviceSecret string `json:"device_secret"`
}

type DeviceResponse struct {
	Device Device `json:"device"`
}

type DeviceListResponse struct {
	Devices []Device `json:"devices"`
}

type DeviceAuthResponse struct {
	DeviceToken      string `json:"device_token"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

type SensorResponse struct {
	Sensor Sensor `json:"sensor"`
}

type SensorListResponse struct {
	Sensors []Sensor `json:"sensors"`
}

type ReadingResponse struct {
	Reading SensorReading `json:"reading"`
}

type ReadingListResponse struct {
	Readings []SensorReading `json:"readings"`
}
