package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestUserTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("user-signing-key", "device-signing-key")

	token, err := svc.IssueUserToken("user-123", "alice")
	assert.NoError(t, err)

	claims, err := svc.VerifyUserToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestDeviceTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("user-signing-key", "device-signing-key")

	token, err := svc.IssueDeviceToken("device-123", "site-456")
	assert.NoError(t, err)

	claims, err := svc.VerifyDeviceToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "device-123", claims.DeviceID)
	assert.Equal(t, "site-456", claims.SiteID)
	assert.Equal(t, "device", claims.TokenType)
}

func TestTokenKindsNotInterchangeable(t *testing.T) {
	svc := NewTokenService("user-signing-key", "device-signing-key")

	userToken, err := svc.IssueUserToken("user-123", "alice")
	assert.NoError(t, err)
	_, err = svc.VerifyDeviceToken(userToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	deviceToken, err := svc.IssueDeviceToken("device-123", "site-456")
	assert.NoError(t, err)
	_, err = svc.VerifyUserToken(deviceToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenKindsNotInterchangeableSharedKey(t *testing.T) {
	// With the fallback in effect both kinds share one key, so only the
	// claim shape separates them.
	svc := NewTokenService("shared-signing-key", "")

	userToken, err := svc.IssueUserToken("user-123", "alice")
	assert.NoError(t, err)
	_, err = svc.VerifyDeviceToken(userToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDeviceKeyFallback(t *testing.T) {
	svc := NewTokenService("shared-signing-key", "")
	assert.Equal(t, svc.userKey, svc.deviceKey)

	dedicated := NewTokenService("user-signing-key", "device-signing-key")
	assert.NotEqual(t, dedicated.userKey, dedicated.deviceKey)

	// A token signed with the fallback key verifies against another
	// service configured the same way.
	token, err := svc.IssueDeviceToken("device-123", "site-456")
	assert.NoError(t, err)
	other := NewTokenService("shared-signing-key", "")
	_, err = other.VerifyDeviceToken(token)
	assert.NoError(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewTokenService("user-signing-key", "")

	expired := UserClaims{
		UserID:   "user-123",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString(svc.userKey)
	assert.NoError(t, err)

	_, err = svc.VerifyUserToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWithoutExpiryRejected(t *testing.T) {
	svc := NewTokenService("user-signing-key", "")

	claims := UserClaims{UserID: "user-123", Username: "alice"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.userKey)
	assert.NoError(t, err)

	_, err = svc.VerifyUserToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongKeyRejected(t *testing.T) {
	svc := NewTokenService("user-signing-key", "")
	other := NewTokenService("a-different-key", "")

	token, err := svc.IssueUserToken("user-123", "alice")
	assert.NoError(t, err)

	_, err = other.VerifyUserToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMalformedTokenRejected(t *testing.T) {
	svc := NewTokenService("user-signing-key", "")

	for _, bad := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.VerifyUserToken(bad)
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = svc.VerifyDeviceToken(bad)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestDeviceTokenMissingClaimsRejected(t *testing.T) {
	svc := NewTokenService("user-signing-key", "")

	issue := func(c DeviceClaims) string {
		c.IssuedAt = jwt.NewNumericDate(time.Now())
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(DeviceTokenTTL))
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(svc.deviceKey)
		assert.NoError(t, err)
		return token
	}

	// Missing device_id
	_, err := svc.VerifyDeviceToken(issue(DeviceClaims{SiteID: "site-456", TokenType: "device"}))
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Missing site_id
	_, err = svc.VerifyDeviceToken(issue(DeviceClaims{DeviceID: "device-123", TokenType: "device"}))
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Wrong type discriminator
	_, err = svc.VerifyDeviceToken(issue(DeviceClaims{DeviceID: "device-123", SiteID: "site-456", TokenType: "user"}))
	assert.ErrorIs(t, err, ErrInvalidToken)
}
