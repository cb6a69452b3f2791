package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeStream = "stream"
)

var ErrInvalidTokenType = errors.New("invalid token type")

// Claims are the values carried by an access token.
type Claims struct {
	UserID    string
	CompanyID string
	Role      string
}

type Service interface {
	GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error)
	// GenerateStreamToken issues a short-lived token accepted only by the
	// live event stream.
	GenerateStreamToken(userID string) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessExpiration time.Duration
	streamExpiration time.Duration
	tokenAuth        *jwtauth.JWTAuth
	now              func() time.Time
}

func NewJWTService(secretKey string, accessExpiration, streamExpiration time.Duration) *JWTService {
	return &JWTService{
		accessExpiration: accessExpiration,
		streamExpiration: streamExpiration,
		tokenAuth:        jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:              time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(claims Claims) (string, int64, error) {
	expiresAt := j.now().Add(j.accessExpiration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":    claims.UserID,
		"company_id": claims.CompanyID,
		"role":       claims.Role,
		"type":       TokenTypeAccess,
		"exp":        expiresAt,
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, expiresAt, nil
}

func (j *JWTService) GenerateStreamToken(userID string) (string, int, error) {
	expiresAt := j.now().Add(j.streamExpiration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    TokenTypeStream,
		"exp":     expiresAt,
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign stream token: %w", err)
	}
	return tokenString, int(j.streamExpiration.Seconds()), nil
}

func (j *JWTService) ValidateStreamToken(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeStream {
		return "", ErrInvalidTokenType
	}

	userIDVal, ok := token.Get("user_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return "", jwt.ErrInvalidJWT()
	}
	return userID, nil
}

// ClaimsFromMap reads access-token claims as produced by jwtauth.FromContext.
func ClaimsFromMap(m map[string]interface{}) (Claims, error) {
	if t, _ := m["type"].(string); t != TokenTypeAccess {
		return Claims{}, ErrInvalidTokenType
	}
	c := Claims{}
	c.UserID, _ = m["user_id"].(string)
	c.CompanyID, _ = m["company_id"].(string)
	c.Role, _ = m["role"].(string)
	if c.UserID == "" || c.CompanyID == "" || c.Role == "" {
		return Claims{}, jwt.ErrInvalidJWT()
	}
	return c, nil
}
