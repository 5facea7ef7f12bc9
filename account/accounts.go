package account

import (
	"errors"
	"taxflow/bizerror"
	"taxflow/persistence"
	"taxflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	FindUserFunc       = FindUser
	FindActiveUserFunc = FindActiveUser
)

func FindUser(id types.ID, s *session.Session) (*User, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	user := User{}
	if err := db.Where(&User{ID: id}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindActiveUser is the assignment-side lookup: a missing user and a
// deactivated user are distinct caller-facing errors.
func FindActiveUser(id types.ID, s *session.Session) (*User, error) {
	user, err := FindUserFunc(id, s)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, bizerror.ErrUserInactive
	}
	return user, nil
}
