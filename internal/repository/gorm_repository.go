package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetglue/server/internal/models"
)

// GormRepository implements the Repository interface over gorm. It works
// against PostgreSQL in production and sqlite in tests; the gorm.Config
// must have TranslateError enabled so duplicate-key detection is portable.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new gorm-backed repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// User repository methods
func (r *GormRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *GormRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByIdentifier looks a user up by username or email.
func (r *GormRepository) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepository) TouchUserLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// Site repository methods

// CreateSiteWithOwner creates the site and its owner membership in a
// single transaction: a site must never exist without its creating
// owner's membership.
func (r *GormRepository) CreateSiteWithOwner(ctx context.Context, site *models.Site, ownerID string) error {
	if site.ID == "" {
		site.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(site).Error; err != nil {
			return err
		}
		membership := &models.SiteUser{
			SiteID: site.ID,
			UserID: ownerID,
			Role:   models.RoleOwner,
		}
		return tx.Create(membership).Error
	})
	return translateError(err)
}

func (r *GormRepository) GetSite(ctx context.Context, id string) (*models.Site, error) {
	var site models.Site
	err := r.db.WithContext(ctx).First(&site, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *GormRepository) ListSitesForUser(ctx context.Context, userID string) ([]models.SiteWithRole, error) {
	sites := []models.SiteWithRole{}
	err := r.db.WithContext(ctx).
		Table("sites").
		Select("sites.*, site_users.role AS my_role").
		Joins("JOIN site_users ON site_users.site_id = sites.id").
		Where("site_users.user_id = ?", userID).
		Order("sites.created_at DESC").
		Scan(&sites).Error
	return sites, err
}

func (r *GormRepository) UpdateSiteStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Site{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// DeleteSite removes the site and everything hanging off it: memberships,
// devices, sensors and readings, in one transaction.
func (r *GormRepository) DeleteSite(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deviceIDs := tx.Model(&models.Device{}).Select("id").Where("site_id = ?", id)
		sensorIDs := tx.Model(&models.Sensor{}).Select("id").Where("device_id IN (?)", deviceIDs)

		if err := tx.Where("sensor_id IN (?)", sensorIDs).Delete(&models.SensorReading{}).Error; err != nil {
			return err
		}
		if err := tx.Where("device_id IN (?)", deviceIDs).Delete(&models.Sensor{}).Error; err != nil {
			return err
		}
		if err := tx.Where("site_id = ?", id).Delete(&models.Device{}).Error; err != nil {
			return err
		}
		if err := tx.Where("site_id = ?", id).Delete(&models.SiteUser{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Site{}, "id = ?", id).Error
	})
}

// Membership repository methods
func (r *GormRepository) GetMembership(ctx context.Context, siteID, userID string) (*models.SiteUser, error) {
	var membership models.SiteUser
	err := r.db.WithContext(ctx).
		Where("site_id = ? AND user_id = ?", siteID, userID).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *GormRepository) CreateMembership(ctx context.Context, membership *models.SiteUser) error {
	return translateError(r.db.WithContext(ctx).Create(membership).Error)
}

func (r *GormRepository) UpdateMembershipRole(ctx context.Context, siteID, userID string, role models.Role) error {
	return r.db.WithContext(ctx).
		Model(&models.SiteUser{}).
		Where("site_id = ? AND user_id = ?", siteID, userID).
		Update("role", role).Error
}

// Device repository methods
func (r *GormRepository) CreateDevice(ctx context.Context, device *models.Device) error {
	if device.ID == "" {
		device.ID = uuid.New().String()
	}
	return translateError(r.db.WithContext(ctx).Create(device).Error)
}

func (r *GormRepository) GetDevice(ctx context.Context, id string) (*models.Device, error) {
	var device models.Device
	err := r.db.WithContext(ctx).First(&device, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *GormRepository) GetDeviceBySerial(ctx context.Context, serialNumber string) (*models.Device, error) {
	var device models.Device
	err := r.db.WithContext(ctx).First(&device, "serial_number = ?", serialNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *GormRepository) ListDevicesBySite(ctx context.Context, siteID string) ([]models.Device, error) {
	devices := []models.Device{}
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("created_at DESC").
		Find(&devices).Error
	return devices, err
}

func (r *GormRepository) UpdateDeviceStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// MarkDeviceSeen stamps last_seen_at and flips the device online.
func (r *GormRepository) MarkDeviceSeen(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       "online",
			"last_seen_at": at,
		}).Error
}

// Sensor repository methods
func (r *GormRepository) CreateSensor(ctx context.Context, sensor *models.Sensor) error {
	if sensor.ID == "" {
		sensor.ID = uuid.New().String()
	}
	return translateError(r.db.WithContext(ctx).Create(sensor).Error)
}

func (r *GormRepository) GetSensor(ctx context.Context, id string) (*models.Sensor, error) {
	var sensor models.Sensor
	err := r.db.WithContext(ctx).First(&sensor, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sensor, nil
}

func (r *GormRepository) ListSensorsByDevice(ctx context.Context, deviceID string) ([]models.Sensor, error) {
	sensors := []models.Sensor{}
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC").
		Find(&sensors).Error
	return sensors, err
}

func (r *GormRepository) UpdateSensor(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.Sensor{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Reading repository methods
func (r *GormRepository) CreateReading(ctx context.Context, reading *models.SensorReading) error {
	return r.db.WithContext(ctx).Create(reading).Error
}

func (r *GormRepository) ListReadingsBySensor(ctx context.Context, sensorID string, limit int) ([]models.SensorReading, error) {
	readings := []models.SensorReading{}
	err := r.db.WithContext(ctx).
		Where("sensor_id = ?", sensorID).
		Order("received_at DESC, id DESC").
		Limit(limit).
		Find(&readings).Error
	return readings, err
}
