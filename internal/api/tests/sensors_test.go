package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/fleetglue/server/internal/api/testutils"
	"github.com/fleetglue/server/internal/models"
)

func TestCreateSensor(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	site := testCtx.CreateSite(t, testCtx.TestUser, "Warehouse North")
	device, _ := testCtx.RegisterDevice(t, testCtx.TestUser, site.ID, "GW-0001")
	sensorsPath := "/api/devices/" + device.ID + "/sensors"

	label := "loading dock"
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, sensorsPath, models.CreateSensorRequest{
		SensorType:    "smoke",
		LocationLabel: &label,
	}, testCtx.SessionCookie(t, testCtx.TestUser))
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp models.SensorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, device.ID, resp.Sensor.DeviceID)
	assert.Equal(t, "smoke", resp.Sensor.SensorType)
	assert.True(t, resp.Sensor.IsEnabled)
	assert.Equal(t, "ok", resp.Sensor.Status)

	// Unsupported sensor type
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, sensorsPath, models.CreateSensorRequest{
		SensorType: "seismograph",
	}, testCtx.SessionCookie(t, testCtx.TestUser))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Viewers cannot attach sensors
	viewer := testCtx.CreateUser(t, "viewer", "viewer@example.com")
	testCtx.AddMember(t, site.ID, viewer, models.RoleViewer)
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, sensorsPath, models.CreateSensorRequest{
		SensorType: "temp",
	}, testCtx.SessionCookie(t, viewer))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Unknown device is not found, even for a viewer
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/devices/"+uuid.New().String()+"/sensors",
		models.CreateSensorRequest{SensorType: "temp"}, testCtx.SessionCookie(t, viewer))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSensors(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	site := testCtx.CreateSite(t, testCtx.TestUser, "Warehouse North")
	device, _ := testCtx.RegisterDevice(t, testCtx.TestUser, site.ID, "GW-0001")
	testCtx.CreateSensor(t, testCtx.TestUser, device.ID)
	testCtx.CreateSensor(t, testCtx.TestUser, device.ID)

	viewer := testCtx.CreateUser(t, "viewer", "viewer@example.com")
	testCtx.AddMember(t, site.ID, viewer, models.RoleViewer)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/devices/"+device.ID+"/sensors", nil,
		testCtx.SessionCookie(t, viewer))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.SensorListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Sensors, 2)

	// Non-members cannot
	outsider := testCtx.CreateUser(t, "outsider", "outsider@example.com")
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/devices/"+device.ID+"/sensors", nil,
		testCtx.SessionCookie(t, outsider))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateSensor(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	site := testCtx.CreateSite(t, testCtx.TestUser, "Warehouse North")
	device, _ := testCtx.RegisterDevice(t, testCtx.TestUser, site.ID, "GW-0001")
	sensor := testCtx.CreateSensor(t, testCtx.TestUser, device.ID)
	sensorPath := "/api/sensors/" + sensor.ID

	disabled := false
	faulty := "faulty"
	w := testutils.PerformRequest(testCtx.Router, http.MethodPatch, sensorPath, models.UpdateSensorRequest{
		IsEnabled: &disabled,
		Status:    &faulty,
	}, testCtx.SessionCookie(t, testCtx.TestUser))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.SensorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Sensor.IsEnabled)
	assert.Equal(t, "faulty", resp.Sensor.Status)

	// An update with nothing to change is rejected
	w = testutils.PerformRequest(testCtx.Router, http.MethodPatch, sensorPath, models.UpdateSensorRequest{},
		testCtx.SessionCookie(t, testCtx.TestUser))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Viewers cannot mutate sensors
	viewer := testCtx.CreateUser(t, "viewer", "viewer@example.com")
	testCtx.AddMember(t, site.ID, viewer, models.RoleViewer)
	enabled := true
	w = testutils.PerformRequest(testCtx.Router, http.MethodPatch, sensorPath, models.UpdateSensorRequest{
		IsEnabled: &enabled,
	}, testCtx.SessionCookie(t, viewer))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Unknown sensor
	w = testutils.PerformRequest(testCtx.Router, http.MethodPatch, "/api/sensors/"+uuid.New().String(),
		models.UpdateSensorRequest{IsEnabled: &enabled}, testCtx.SessionCookie(t, testCtx.TestUser))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
