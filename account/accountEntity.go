package account

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID   types.ID `json:"id" gorm:"primary_key"`
	Name string   `json:"name"`

	Nickname string `json:"nickname"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
	Role     string   `json:"role"`
}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}
