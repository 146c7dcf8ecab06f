package models

import (
	"time"

	"github.com/BumsCross1/roulette-api/cmd/db"
	"github.com/BumsCross1/roulette-api/pkg/logger"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type User struct {
	ID            int64  `gorm:"primaryKey,autoIncrement"`
	Nickname      string `gorm:"unique"`
	AvatarID      int
	BalanceChips  int64
	XP            int64
	GamesPlayed   int64
	GamesWon      int64
	WinStreak     int64
	HighestWin    int64
	TotalWinnings int64
	CreatedAt     time.Time
	Password      string `json:"-"`
}

func (u *User) Validate() error {
	return validate.Struct(u)
}

func CheckIfUserExistsByID(userID int64) (bool, error) {
	var exists bool
	err := db.DB.Model(&User{}).
		Select("count(*) > 0").
		Where("id = ?", userID).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}

func GetUserWithPassword(nickname string) (*User, error) {
	var user User

	err := db.DB.
		Where("nickname = ?", nickname).
		First(&user).Error
	if err != nil {
		return nil, logger.WrapError(err, "")
	}

	return &user, nil
}

func CheckIfUserExistsByNickname(nn string) (bool, error) {
	var exists bool

	err := db.DB.Model(&User{}).
		Select("count(*) > 0").
		Where("nickname = ?", nn).
		Scan(&exists).Error
	if err != nil {
		return true, logger.WrapError(err, "")
	}

	return exists, nil
}
