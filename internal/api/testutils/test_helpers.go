package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fleetglue/server/internal/api"
	"github.com/fleetglue/server/internal/auth"
	"github.com/fleetglue/server/internal/config"
	"github.com/fleetglue/server/internal/models"
	"github.com/fleetglue/server/internal/ratelimit"
	"github.com/fleetglue/server/internal/repository"
	"github.com/fleetglue/server/internal/service"
)

// TestPassword is the password of every user created through helpers.
const TestPassword = "testpassword123"

// TestContext holds all dependencies for API tests
type TestContext struct {
	Router     *gin.Engine
	Repository repository.Repository
	Service    service.Service
	Tokens     *auth.TokenService
	Limiter    *ratelimit.MemoryLimiter
	DB         *gorm.DB
	TestUser   *models.User
}

// SetupTestContext wires the full stack against a private in-memory
// sqlite database, so each test runs hermetically.
func SetupTestContext(t *testing.T) *TestContext {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err, "Failed to open test database")

	err = config.Migrate(db)
	assert.NoError(t, err, "Failed to migrate test database")

	repo := repository.NewGormRepository(db)
	tokens := auth.NewTokenService("test-secret-key", "")
	limiter := ratelimit.NewMemoryLimiter(10, time.Minute)
	svc := service.NewDefaultService(repo, tokens, limiter)
	handler := api.NewHandler(svc, tokens, false)

	router := gin.New()
	handler.SetupRoutes(router)

	tc := &TestContext{
		Router:     router,
		Repository: repo,
		Service:    svc,
		Tokens:     tokens,
		Limiter:    limiter,
		DB:         db,
	}
	tc.TestUser = tc.CreateUser(t, "testuser", "testuser@example.com")
	return tc
}

// CleanupTestContext releases test resources.
func CleanupTestContext(tc *TestContext) {
	if sqlDB, err := tc.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

// CreateUser inserts a user with TestPassword and returns it.
func (tc *TestContext) CreateUser(t *testing.T, username, email string) *models.User {
	passwordHash, err := auth.HashSecret(TestPassword)
	assert.NoError(t, err, "Failed to hash test password")

	user := &models.User{
		FullName:     "Test User",
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Status:       "active",
	}
	err = tc.Repository.CreateUser(context.Background(), user)
	assert.NoError(t, err, "Failed to create test user")
	return user
}

// SessionCookie returns a request header map carrying a valid session
// cookie for the given user.
func (tc *TestContext) SessionCookie(t *testing.T, user *models.User) map[string]string {
	token, err := tc.Tokens.IssueUserToken(user.ID, user.Username)
	assert.NoError(t, err, "Failed to issue session token")
	return map[string]string{
		"Cookie": fmt.Sprintf("%s=%s", api.SessionCookieName, token),
	}
}

// CreateSite creates a site owned by the given user.
func (tc *TestContext) CreateSite(t *testing.T, owner *models.User, name string) *models.Site {
	site, err := tc.Service.CreateSite(context.Background(), owner.ID, models.CreateSiteRequest{Name: name})
	assert.NoError(t, err, "Failed to create test site")
	return site
}

// AddMember adds a membership row directly.
func (tc *TestContext) AddMember(t *testing.T, siteID string, user *models.User, role models.Role) {
	err := tc.Repository.CreateMembership(context.Background(), &models.SiteUser{
		SiteID: siteID,
		UserID: user.ID,
		Role:   role,
	})
	assert.NoError(t, err, "Failed to create test membership")
}

// RegisterDevice enrolls a device and returns it with its one-time
// plaintext secret.
func (tc *TestContext) RegisterDevice(t *testing.T, owner *models.User, siteID, serialNumber string) (*models.Device, string) {
	device, secret, err := tc.Service.RegisterDevice(context.Background(), owner.ID, siteID, models.RegisterDeviceRequest{
		SerialNumber: serialNumber,
		DeviceType:   "gateway",
	})
	assert.NoError(t, err, "Failed to register test device")
	return device, secret
}

// CreateSensor attaches a sensor to a device.
func (tc *TestContext) CreateSensor(t *testing.T, owner *models.User, deviceID string) *models.Sensor {
	sensor, err := tc.Service.CreateSensor(context.Background(), owner.ID, deviceID, models.CreateSensorRequest{
		SensorType: "temp",
	})
	assert.NoError(t, err, "Failed to create test sensor")
	return sensor
}

// DeviceToken issues a bearer token for the device.
func (tc *TestContext) DeviceToken(t *testing.T, device *models.Device) string {
	token, err := tc.Tokens.IssueDeviceToken(device.ID, device.SiteID)
	assert.NoError(t, err, "Failed to issue device token")
	return token
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// BearerHeaders returns headers with an Authorization bearer token
func BearerHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
