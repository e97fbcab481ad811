package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// UserTokenTTL is the validity of a browser session token.
	UserTokenTTL = 24 * time.Hour
	// DeviceTokenTTL is the validity of a device bearer token.
	DeviceTokenTTL = 15 * time.Minute

	deviceTokenType = "device"
)

// ErrInvalidToken is returned for every verification failure: malformed,
// expired, bad signature or wrong claim shape. Callers never learn which.
var ErrInvalidToken = errors.New("invalid token")

var validMethods = jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})

// UserClaims is the payload of a session token.
type UserClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// DeviceClaims is the payload of a device token. TokenType must equal
// "device"; user and device tokens are never interchangeable.
type DeviceClaims struct {
	DeviceID  string `json:"device_id"`
	SiteID    string `json:"site_id"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies the two token kinds, each signed with
// its own key.
type TokenService struct {
	userKey   []byte
	deviceKey []byte
}

// NewTokenService builds a TokenService. An empty deviceSecret falls back
// to jwtSecret; this mirrors the DEVICE_JWT_SECRET -> JWT_SECRET
// configuration-resolution rule and is intentional.
func NewTokenService(jwtSecret, deviceSecret string) *TokenService {
	if deviceSecret == "" {
		deviceSecret = jwtSecret
	}
	return &TokenService{
		userKey:   []byte(jwtSecret),
		deviceKey: []byte(deviceSecret),
	}
}

// IssueUserToken signs a session token for the given user.
func (s *TokenService) IssueUserToken(userID, username string) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(UserTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.userKey)
}

// VerifyUserToken checks signature and expiry and returns the session
// claims, or ErrInvalidToken.
func (s *TokenService) VerifyUserToken(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.userKey, nil
	}, validMethods, jwt.WithExpirationRequired())
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueDeviceToken signs a short-lived bearer token for the given device.
func (s *TokenService) IssueDeviceToken(deviceID, siteID string) (string, error) {
	now := time.Now()
	claims := DeviceClaims{
		DeviceID:  deviceID,
		SiteID:    siteID,
		TokenType: deviceTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(DeviceTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.deviceKey)
}

// VerifyDeviceToken checks signature, expiry and claim shape. A missing
// device_id, site_id or typ claim is a verification failure, not a
// distinct error.
func (s *TokenService) VerifyDeviceToken(tokenString string) (*DeviceClaims, error) {
	claims := &DeviceClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.deviceKey, nil
	}, validMethods, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != deviceTokenType || claims.DeviceID == "" || claims.SiteID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
