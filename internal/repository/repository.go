package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fleetglue/server/internal/models"
)

// ErrDuplicate is returned when a create violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// Repository defines the datastore operations the service layer depends on.
// Lookup methods return (nil, nil) when the record does not exist.
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	TouchUserLogin(ctx context.Context, id string, at time.Time) error

	// Site operations
	CreateSiteWithOwner(ctx context.Context, site *models.Site, ownerID string) error
	GetSite(ctx context.Context, id string) (*models.Site, error)
	ListSitesForUser(ctx context.Context, userID string) ([]models.SiteWithRole, error)
	UpdateSiteStatus(ctx context.Context, id, status string) error
	DeleteSite(ctx context.Context, id string) error

	// Membership operations
	GetMembership(ctx context.Context, siteID, userID string) (*models.SiteUser, error)
	CreateMembership(ctx context.Context, membership *models.SiteUser) error
	UpdateMembershipRole(ctx context.Context, siteID, userID string, role models.Role) error

	// Device operations
	CreateDevice(ctx context.Context, device *models.Device) error
	GetDevice(ctx context.Context, id string) (*models.Device, error)
	GetDeviceBySerial(ctx context.Context, serialNumber string) (*models.Device, error)
	ListDevicesBySite(ctx context.Context, siteID string) ([]models.Device, error)
	UpdateDeviceStatus(ctx context.Context, id, status string) error
	MarkDeviceSeen(ctx context.Context, id string, at time.Time) error

	// Sensor operations
	CreateSensor(ctx context.Context, sensor *models.Sensor) error
	GetSensor(ctx context.Context, id string) (*models.Sensor, error)
	ListSensorsByDevice(ctx context.Context, deviceID string) ([]models.Sensor, error)
	UpdateSensor(ctx context.Context, id string, fields map[string]interface{}) error

	// Reading operations
	CreateReading(ctx context.Context, reading *models.SensorReading) error
	ListReadingsBySensor(ctx context.Context, sensorID string, limit int) ([]models.SensorReading, error)
}
