package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetglue/server/internal/api/testutils"
	"github.com/fleetglue/server/internal/models"
)

func TestCreateSite(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	session := testCtx.SessionCookie(t, testCtx.TestUser)

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/sites", models.CreateSiteRequest{
		Name: "Warehouse North",
	}, session)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp models.SiteResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Site.ID)
	assert.Equal(t, "active", resp.Site.Status)

	// Site creation and owner membership creation are atomic: the
	// creator's owner membership must exist as soon as the site does.
	membership, err := testCtx.Repository.GetMembership(context.Background(), resp.Site.ID, testCtx.TestUser.ID)
	assert.NoError(t, err)
	assert.NotNil(t, membership)
	assert.Equal(t, models.RoleOwner, membership.Role)
}

func TestListSites(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	site := testCtx.CreateSite(t, testCtx.TestUser, "Warehouse North")
	viewer := testCtx.CreateUser(t, "viewer", "viewer@example.com")
	testCtx.AddMember(t, site.ID, viewer, models.RoleViewer)

	// The owner sees their role
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/sites", nil, testCtx.SessionCookie(t, testCtx.TestUser))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.SiteListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Sites, 1)
	assert.Equal(t, site.ID, resp.Sites[0].ID)
	assert.Equal(t, models.RoleOwner, resp.Sites[0].MyRole)

	// The viewer sees the same site with their own role
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/sites", nil, testCtx.SessionCookie(t, viewer))
	assert.Equal(t, http.StatusOK, w.Code)
	resp = models.SiteListResponse{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Sites, 1)
	assert.Equal(t, models.RoleViewer, resp.Sites[0].MyRole)

	// A user with no memberships sees nothing
	outsider := testCtx.CreateUser(t, "outsider", "outsider@example.com")
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/sites", nil, testCtx.SessionCookie(t, outsider))
	assert.Equal(t, http.StatusOK, w.Code)
	resp = models.SiteListResponse{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Sites)
}

func TestDeleteSiteRequiresOwner(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	site := testCtx.CreateSite(t, testCtx.TestUser, "Warehouse North")
	admin := testCtx.CreateUser(t, "admin", "admin@example.com")
	viewer := testCtx.CreateUser(t, "viewer", "viewer@example.com")
	outsider := testCtx.CreateUser(t, "outsider", "outsider@example.com")
	testCtx.AddMember(t, site.ID, admin, models.RoleAdmin)
	testCtx.AddMember(t, site.ID, viewer, models.RoleViewer)

	for _, user := range []*models.User{viewer, admin, outsider} {
		w := testutils.PerformRequest(testCtx.Router, http.MethodDelete, "/api/sites/"+site.ID, nil, testCtx.SessionCookie(t, user))
		assert.Equal(t, http.StatusForbidden, w.Code)
	}

	w := testutils.PerformRequest(testCtx.Router, http.MethodDelete, "/api/sites/"+site.ID, nil, testCtx.SessionCookie(t, testCtx.TestUser))
	assert.Equal(t, http.StatusOK, w.Code)

	gone, err := testCtx.Repository.GetSite(context.Background(), site.ID)
	assert.NoError(t, err)
	assert.Nil(t, gone)

	// Memberships went with the site
	membership, err := testCtx.Repository.GetMembership(context.Background(), site.ID, viewer.ID)
	assert.NoError(t, err)
	assert.Nil(t, membership)
}

func TestUpdateSiteStatus(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	site := testCtx.CreateSite(t, testCtx.TestUser, "Warehouse North")
	admin := testCtx.CreateUser(t, "admin", "admin@example.com")
	viewer := testCtx.CreateUser(t, "viewer", "viewer@example.com")
	testCtx.AddMember(t, site.ID, admin, models.RoleAdmin)
	testCtx.AddMember(t, site.ID, viewer, models.RoleViewer)

	// Viewers are denied on owner/admin-gated mutations
	w := testutils.PerformRequest(testCtx.Router, http.MethodPatch, "/api/sites/"+site.ID+"/status",
		models.UpdateSiteStatusRequest{Status: "inactive"}, testCtx.SessionCookie(t, viewer))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admins are admitted
	w = testutils.PerformRequest(testCtx.Router, http.MethodPatch, "/api/sites/"+site.ID+"/status",
		models.UpdateSiteStatusRequest{Status: "inactive"}, testCtx.SessionCookie(t, admin))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.SiteResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "inactive", resp.Site.Status)

	// Invalid status value
	w = testutils.PerformRequest(testCtx.Router, http.MethodPatch, "/api/sites/"+site.ID+"/status",
		models.UpdateSiteStatusRequest{Status: "demolished"}, testCtx.SessionCookie(t, admin))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSiteMembers(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	site := testCtx.CreateSite(t, testCtx.TestUser, "Warehouse North")
	owner := testCtx.TestUser
	admin := testCtx.CreateUser(t, "admin", "admin@example.com")
	viewer := testCtx.CreateUser(t, "viewer", "viewer@example.com")
	newcomer := testCtx.CreateUser(t, "newcomer", "newcomer@example.com")
	testCtx.AddMember(t, site.ID, admin, models.RoleAdmin)
	testCtx.AddMember(t, site.ID, viewer, models.RoleViewer)

	membersPath := "/api/sites/" + site.ID + "/members"

	// Viewers cannot add members
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, membersPath,
		models.AddSiteMemberRequest{Identifier: "newcomer", Role: models.RoleViewer}, testCtx.SessionCookie(t, viewer))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admins cannot grant ownership
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, membersPath,
		models.AddSiteMemberRequest{Identifier: "newcomer", Role: models.RoleOwner}, testCtx.SessionCookie(t, admin))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admins can add a viewer
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, membersPath,
		models.AddSiteMemberRequest{Identifier: "newcomer", Role: models.RoleViewer}, testCtx.SessionCookie(t, admin))
	assert.Equal(t, http.StatusCreated, w.Code)

	// One membership per (site, user) pair
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, membersPath,
		models.AddSiteMemberRequest{Identifier: "newcomer", Role: models.RoleAdmin}, testCtx.SessionCookie(t, admin))
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown user
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, membersPath,
		models.AddSiteMemberRequest{Identifier: "ghost", Role: models.RoleViewer}, testCtx.SessionCookie(t, admin))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Owners can promote, and can grant ownership
	w = testutils.PerformRequest(testCtx.Router, http.MethodPatch, membersPath+"/"+newcomer.ID,
		models.UpdateSiteMemberRequest{Role: models.RoleOwner}, testCtx.SessionCookie(t, owner))
	assert.Equal(t, http.StatusOK, w.Code)

	// Admins cannot demote an owner
	w = testutils.PerformRequest(testCtx.Router, http.MethodPatch, membersPath+"/"+newcomer.ID,
		models.UpdateSiteMemberRequest{Role: models.RoleViewer}, testCtx.SessionCookie(t, admin))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Role change for someone who is not a member
	ghost := testCtx.CreateUser(t, "ghost", "ghost@example.com")
	w = testutils.PerformRequest(testCtx.Router, http.MethodPatch, membersPath+"/"+ghost.ID,
		models.UpdateSiteMemberRequest{Role: models.RoleAdmin}, testCtx.SessionCookie(t, owner))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
