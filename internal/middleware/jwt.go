package middleware

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/BumsCross1/roulette-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenAccess  = "TokenAccess"
	TokenRefresh = "TokenRefresh"
)

func JWTKey() string {
	key, ok := os.LookupEnv("JWT_KEY")
	if !ok {
		return "dasdasdasdasdas"
	}
	return key
}

type tokenClaims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenNew signs a token for a user, valid until the given unix time.
func TokenNew(key string, userID int64, expiresAt int64, tokenType string) (string, error) {
	claims := tokenClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Unix(expiresAt, 0)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		return "", logger.WrapError(err, "")
	}
	return signed, nil
}

// TokenCheck parses and verifies a token, returning the user ID and token type.
func TokenCheck(token, key string) (int64, string, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return 0, "", err
	}
	if !parsed.Valid {
		return 0, "", errors.New("invalid token")
	}
	return claims.UserID, claims.TokenType, nil
}

func GetTokenFromAuthorizationHeader(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("missing Authorization header")
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return "", errors.New("Authorization header is not a Bearer token")
	}
	return token, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", logger.WrapError(err, "")
	}
	return string(hash), nil
}

func ComparePasswords(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
