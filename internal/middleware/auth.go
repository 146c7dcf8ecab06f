package middleware

import (
	"errors"

	"github.com/BumsCross1/roulette-api/internal/models"
	"github.com/BumsCross1/roulette-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	ContextUserIDKey = "user_id"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := GetTokenFromAuthorizationHeader(c)
		if err != nil {
			logger.Error("%v", err)
			c.AbortWithStatus(400)
			return
		}

		userID, tokenType, err := TokenCheck(token, JWTKey())
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				logger.Error("%v", err)
				c.AbortWithStatus(401)
				return
			}
			logger.Error("%v", err)
			c.AbortWithStatus(400)
			return
		}

		if tokenType != TokenAccess {
			c.AbortWithStatus(401)
			return
		}

		// check if user in database
		exists, err := models.CheckIfUserExistsByID(userID)
		if err != nil {
			logger.Error("%v", err)
			c.AbortWithStatus(500)
			return
		}

		// call c.Next if user in database
		// else response with 401
		if exists {
			c.Set(ContextUserIDKey, userID)
			c.Next()
			return
		} else {
			c.JSON(401, gin.H{"error": "User not authorized"})
			c.Abort()
			return
		}
	}
}

func GetUserIDFromGinContext(c *gin.Context) (int64, error) {
	// Get user_id from middleware
	userIDAny, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, logger.WrapError(errors.New("user_id not in GIN context"), "")
	}

	userIDInt, ok := userIDAny.(int64)
	if !ok {
		return 0, logger.WrapError(errors.New("unable to cast user_id value to int"), "")
	}

	return userIDInt, nil
}
