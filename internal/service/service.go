package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fleetglue/server/internal/auth"
	"github.com/fleetglue/server/internal/models"
	"github.com/fleetglue/server/internal/ratelimit"
	"github.com/fleetglue/server/internal/repository"
)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error)

	// Site operations
	CreateSite(ctx context.Context, userID string, req models.CreateSiteRequest) (*models.Site, error)
	ListSites(ctx context.Context, userID string) ([]models.SiteWithRole, error)
	UpdateSiteStatus(ctx context.Context, userID, siteID, status string) (*models.Site, error)
	DeleteSite(ctx context.Context, userID, siteID string) error

	// Membership operations
	AddSiteMember(ctx context.Context, userID, siteID string, req models.AddSiteMemberRequest) (*models.SiteUser, error)
	UpdateSiteMemberRole(ctx context.Context, userID, siteID, memberID string, role models.Role) (*models.SiteUser, error)

	// Device operations
	RegisterDevice(ctx context.Context, userID, siteID string, req models.RegisterDeviceRequest) (*models.Device, string, error)
	ListDevices(ctx context.Context, userID, siteID string) ([]models.Device, error)
	UpdateDeviceStatus(ctx context.Context, userID, deviceID, status string) (*models.Device, error)
	AuthenticateDevice(ctx context.Context, clientIP string, req models.DeviceAuthRequest) (string, error)

	// Sensor operations
	CreateSensor(ctx context.Context, userID, deviceID string, req models.CreateSensorRequest) (*models.Sensor, error)
	ListSensors(ctx context.Context, userID, deviceID string) ([]models.Sensor, error)
	UpdateSensor(ctx context.Context, userID, sensorID string, req models.UpdateSensorRequest) (*models.Sensor, error)
	ListReadings(ctx context.Context, userID, sensorID string, limit int) ([]models.SensorReading, error)

	// Telemetry ingestion
	SubmitReading(ctx context.Context, deviceID string, req models.CreateReadingRequest) (*models.SensorReading, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo    repository.Repository
	tokens  *auth.TokenService
	limiter ratelimit.Limiter
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, tokens *auth.TokenService, limiter ratelimit.Limiter) Service {
	return &DefaultService{
		repo:    repo,
		tokens:  tokens,
		limiter: limiter,
	}
}

// requireSiteRole denies unless the user holds at least min on the site.
// A missing membership yields the same ErrForbidden whether or not the
// site exists.
func (s *DefaultService) requireSiteRole(ctx context.Context, siteID, userID string, min models.Role) (*models.SiteUser, error) {
	membership, err := s.repo.GetMembership(ctx, siteID, userID)
	if err != nil {
		return nil, fmt.Errorf("error checking site membership: %w", err)
	}
	if membership == nil || !membership.Role.AtLeast(min) {
		return nil, ErrForbidden
	}
	return membership, nil
}

// Authentication methods
func (s *DefaultService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	if existing, err := s.repo.GetUserByIdentifier(ctx, req.Username); err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	} else if existing != nil {
		return nil, &ConflictError{Message: "This username is already in use."}
	}

	if existing, err := s.repo.GetUserByIdentifier(ctx, req.Email); err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	} else if existing != nil {
		return nil, &ConflictError{Message: "This email is already in use."}
	}

	passwordHash, err := auth.HashSecret(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		FullName:     req.FullName,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Status:       "active",
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Message: "This username or email is already in use."}
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	user, err := s.repo.GetUserByIdentifier(ctx, req.Identifier)
	if err != nil {
		return "", nil, fmt.Errorf("error getting user: %w", err)
	}

	// Unknown identifier and wrong password produce the same outcome
	if user == nil || !auth.VerifySecret(req.Password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	if err := s.repo.TouchUserLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		return "", nil, fmt.Errorf("error updating last login: %w", err)
	}

	token, err := s.tokens.IssueUserToken(user.ID, user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("error generating token: %w", err)
	}

	return token, user, nil
}

// Site operations
func (s *DefaultService) CreateSite(ctx context.Context, userID string, req models.CreateSiteRequest) (*models.Site, error) {
	site := &models.Site{
		Name:        req.Name,
		AddressLine: req.AddressLine,
		City:        req.City,
		Country:     req.Country,
		Status:      "active",
	}

	if err := s.repo.CreateSiteWithOwner(ctx, site, userID); err != nil {
		return nil, fmt.Errorf("error creating site: %w", err)
	}

	return site, nil
}

func (s *DefaultService) ListSites(ctx context.Context, userID string) ([]models.SiteWithRole, error) {
	sites, err := s.repo.ListSitesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing sites: %w", err)
	}
	return sites, nil
}

func (s *DefaultService) UpdateSiteStatus(ctx context.Context, userID, siteID, status string) (*models.Site, error) {
	if _, err := s.requireSiteRole(ctx, siteID, userID, models.RoleAdmin); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateSiteStatus(ctx, siteID, status); err != nil {
		return nil, fmt.Errorf("error updating site status: %w", err)
	}

	site, err := s.repo.GetSite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("error getting site: %w", err)
	}
	if site == nil {
		return nil, ErrNotFound
	}
	return site, nil
}

func (s *DefaultService) DeleteSite(ctx context.Context, userID, siteID string) error {
	// Owner only
	if _, err := s.requireSiteRole(ctx, siteID, userID, models.RoleOwner); err != nil {
		return err
	}

	if err := s.repo.DeleteSite(ctx, siteID); err != nil {
		return fmt.Errorf("error deleting site: %w", err)
	}
	return nil
}

// Membership operations
func (s *DefaultService) AddSiteMember(ctx context.Context, userID, siteID string, req models.AddSiteMemberRequest) (*models.SiteUser, error) {
	actor, err := s.requireSiteRole(ctx, siteID, userID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	// Granting ownership is reserved for owners
	if req.Role == models.RoleOwner && actor.Role != models.RoleOwner {
		return nil, ErrForbidden
	}

	user, err := s.repo.GetUserByIdentifier(ctx, req.Identifier)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	existing, err := s.repo.GetMembership(ctx, siteID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error checking membership: %w", err)
	}
	if existing != nil {
		return nil, &ConflictError{Message: "User is already a member of this site."}
	}

	membership := &models.SiteUser{
		SiteID: siteID,
		UserID: user.ID,
		Role:   req.Role,
	}
	if err := s.repo.CreateMembership(ctx, membership); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ConflictError{Message: "User is already a member of this site."}
		}
		return nil, fmt.Errorf("error creating membership: %w", err)
	}

	return membership, nil
}

func (s *DefaultService) UpdateSiteMemberRole(ctx context.Context, userID, siteID, memberID string, role models.Role) (*models.SiteUser, error) {
	actor, err := s.requireSiteRole(ctx, siteID, userID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	target, err := s.repo.GetMembership(ctx, siteID, memberID)
	if err != nil {
		return nil, fmt.Errorf("error getting membership: %w", err)
	}
	if target == nil {
		return nil, ErrNotFound
	}

	// Granting or revoking ownership is reserved for owners
	if (role == models.RoleOwner || target.Role == models.RoleOwner) && actor.Role != models.RoleOwner {
		return nil, ErrForbidden
	}

	if err := s.repo.UpdateMembershipRole(ctx, siteID, memberID, role); err != nil {
		return nil, fmt.Errorf("error updating membership role: %w", err)
	}

	target.Role = role
	return target, nil
}

// Device operations
func (s *DefaultService) RegisterDevice(ctx context.Context, userID, siteID string, req models.RegisterDeviceRequest) (*models.Device, string, error) {
	if _, err := s.requireSiteRole(ctx, siteID, userID, models.RoleAdmin); err != nil {
		return nil, "", err
	}

	// The plaintext secret exists only in this response; only its hash
	// is persisted. Losing it requires re-issuance.
	secret, err := auth.NewDeviceSecret()
	if err != nil {
		return nil, "", err
	}
	secretHash, err := auth.HashSecret(secret)
	if err != nil {
		return nil, "", err
	}

	device := &models.Device{
		SiteID:       siteID,
		SerialNumber: req.SerialNumber,
		DeviceType:   req.DeviceType,
		SecretHash:   secretHash,
		Status:       "offline",
	}

	if err := s.repo.CreateDevice(ctx, device); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", &ConflictError{Message: "serial_number already exists"}
		}
		return nil, "", fmt.Errorf("error creating device: %w", err)
	}

	return device, secret, nil
}

func (s *DefaultService) ListDevices(ctx context.Context, userID, siteID string) ([]models.Device, error) {
	// Any member can list
	if _, err := s.requireSiteRole(ctx, siteID, userID, models.RoleViewer); err != nil {
		return nil, err
	}

	devices, err := s.repo.ListDevicesBySite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("error listing devices: %w", err)
	}
	return devices, nil
}

func (s *DefaultService) UpdateDeviceStatus(ctx context.Context, userID, deviceID, status string) (*models.Device, error) {
	// Existence check precedes the role check
	device, err := s.repo.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("error getting device: %w", err)
	}
	if device == nil {
		return nil, ErrNotFound
	}

	if _, err := s.requireSiteRole(ctx, device.SiteID, userID, models.RoleAdmin); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDeviceStatus(ctx, deviceID, status); err != nil {
		return nil, fmt.Errorf("error updating device status: %w", err)
	}

	device.Status = status
	return device, nil
}

func (s *DefaultService) AuthenticateDevice(ctx context.Context, clientIP string, req models.DeviceAuthRequest) (string, error) {
	// Budgets are independent per (origin, serial) pair
	result := s.limiter.Admit(clientIP + ":" + req.SerialNumber)
	if !result.OK {
		return "", &RateLimitedError{RetryAfter: result.RetryAfter}
	}

	device, err := s.repo.GetDeviceBySerial(ctx, req.SerialNumber)
	if err != nil {
		return "", fmt.Errorf("error getting device: %w", err)
	}

	// Unknown serial and wrong secret produce the same outcome
	if device == nil || !auth.VerifySecret(req.Secret, device.SecretHash) {
		return "", ErrInvalidCredentials
	}

	if err := s.repo.MarkDeviceSeen(ctx, device.ID, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("error updating device: %w", err)
	}

	token, err := s.tokens.IssueDeviceToken(device.ID, device.SiteID)
	if err != nil {
		return "", fmt.Errorf("error generating device token: %w", err)
	}
	return token, nil
}

// Sensor operations
func (s *DefaultService) CreateSensor(ctx context.Context, userID, deviceID string, req models.CreateSensorRequest) (*models.Sensor, error) {
	device, err := s.repo.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("error getting device: %w", err)
	}
	if device == nil {
		return nil, ErrNotFound
	}

	if _, err := s.requireSiteRole(ctx, device.SiteID, userID, models.RoleAdmin); err != nil {
		return nil, err
	}

	sensor := &models.Sensor{
		DeviceID:      deviceID,
		SensorType:    req.SensorType,
		LocationLabel: req.LocationLabel,
		IsEnabled:     true,
		Status:        "ok",
	}

	if err := s.repo.CreateSensor(ctx, sensor); err != nil {
		return nil, fmt.Errorf("error creating sensor: %w", err)
	}
	return sensor, nil
}

func (s *DefaultService) ListSensors(ctx context.Context, userID, deviceID string) ([]models.Sensor, error) {
	device, err := s.repo.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("error getting device: %w", err)
	}
	if device == nil {
		return nil, ErrNotFound
	}

	if _, err := s.requireSiteRole(ctx, device.SiteID, userID, models.RoleViewer); err != nil {
		return nil, err
	}

	sensors, err := s.repo.ListSensorsByDevice(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("error listing sensors: %w", err)
	}
	return sensors, nil
}

func (s *DefaultService) UpdateSensor(ctx context.Context, userID, sensorID string, req models.UpdateSensorRequest) (*models.Sensor, error) {
	sensor, err := s.repo.GetSensor(ctx, sensorID)
	if err != nil {
		return nil, fmt.Errorf("error getting sensor: %w", err)
	}
	if sensor == nil {
		return nil, ErrNotFound
	}

	device, err := s.repo.GetDevice(ctx, sensor.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("error getting device: %w", err)
	}
	if device == nil {
		return nil, ErrNotFound
	}

	if _, err := s.requireSiteRole(ctx, device.SiteID, userID, models.RoleAdmin); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.IsEnabled != nil {
		fields["is_enabled"] = *req.IsEnabled
		sensor.IsEnabled = *req.IsEnabled
	}
	if req.Status != nil {
		fields["status"] = *req.Status
		sensor.Status = *req.Status
	}
	if req.LocationLabel != nil {
		fields["location_label"] = *req.LocationLabel
		sensor.LocationLabel = req.LocationLabel
	}

	if err := s.repo.UpdateSensor(ctx, sensorID, fields); err != nil {
		return nil, fmt.Errorf("error updating sensor: %w", err)
	}
	return sensor, nil
}

func (s *DefaultService) ListReadings(ctx context.Context, userID, sensorID string, limit int) ([]models.SensorReading, error) {
	sensor, err := s.repo.GetSensor(ctx, sensorID)
	if err != nil {
		return nil, fmt.Errorf("error getting sensor: %w", err)
	}
	if sensor == nil {
		return nil, ErrNotFound
	}

	device, err := s.repo.GetDevice(ctx, sensor.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("error getting device: %w", err)
	}
	if device == nil {
		return nil, ErrNotFound
	}

	if _, err := s.requireSiteRole(ctx, device.SiteID, userID, models.RoleViewer); err != nil {
		return nil, err
	}

	readings, err := s.repo.ListReadingsBySensor(ctx, sensorID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing readings: %w", err)
	}
	return readings, nil
}

// Telemetry ingestion
func (s *DefaultService) SubmitReading(ctx context.Context, deviceID string, req models.CreateReadingRequest) (*models.SensorReading, error) {
	sensor, err := s.repo.GetSensor(ctx, req.SensorID)
	if err != nil {
		return nil, fmt.Errorf("error getting sensor: %w", err)
	}
	if sensor == nil {
		return nil, ErrNotFound
	}

	// Anti-spoof: the target sensor must belong to the presenting device
	if sensor.DeviceID != deviceID {
		return nil, ErrForbidden
	}

	reading := &models.SensorReading{
		SensorID:    req.SensorID,
		Value:       *req.Value,
		Unit:        req.Unit,
		RecordedAt:  req.RecordedAt,
		ReceivedAt:  time.Now().UTC(),
		QualityFlag: "ok",
	}
	if req.QualityFlag != nil {
		reading.QualityFlag = *req.QualityFlag
	}

	if err := s.repo.CreateReading(ctx, reading); err != nil {
		return nil, fmt.Errorf("error creating reading: %w", err)
	}

	if err := s.repo.MarkDeviceSeen(ctx, deviceID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("error updating device: %w", err)
	}

	return reading, nil
}
