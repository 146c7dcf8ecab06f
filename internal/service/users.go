package service

import (
	"errors"

	"github.com/BumsCross1/roulette-api/cmd/db"
	"github.com/BumsCross1/roulette-api/internal/middleware"
	"github.com/BumsCross1/roulette-api/internal/models"
	"github.com/BumsCross1/roulette-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StartingBalanceChips is credited to every new account.
const StartingBalanceChips = 1000

type signUpInput struct {
	Nickname      string `json:"nickname" validate:"required,min=3,max=32"`
	Password      string `json:"password" validate:"required,min=8,max=64"`
	PasswordRetry string `json:"password_retry" validate:"required,eqfield=Password"`
	AvatarID      int    `json:"avatar_id" validate:"required,min=1,max=100"`
}

func (i *signUpInput) Validate() error {
	return validate.Struct(i)
}

func SignUp(c *gin.Context) {
	var input signUpInput

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": "Unable to unmarshal body"})
		return
	}

	if err := input.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	exists, err := models.CheckIfUserExistsByNickname(input.Nickname)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}
	if exists {
		c.JSON(409, gin.H{"error": "User with this nickname already exists"})
		return
	}

	hashed, err := middleware.HashPassword(input.Password)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	user := models.User{
		Nickname:     input.Nickname,
		AvatarID:     input.AvatarID,
		Password:     hashed,
		BalanceChips: StartingBalanceChips,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return logger.WrapError(err, "")
		}
		return nil
	})
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	issueToken(c, &user)
}

func GetUser(c *gin.Context) {
	var user models.User
	var err error

	user.ID, err = middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	err = db.DB.First(&user, user.ID).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(404, gin.H{"error": "User not found"})
		return
	} else if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, user)
}

func Auth(c *gin.Context) {
	userId, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	exists, err := models.CheckIfUserExistsByID(userId)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	if exists {
		c.Status(200)
		return
	} else {
		c.Status(401)
		return
	}
}
