package model

import (
	"time"
)

// swagger:model User
type User struct {
	BaseModel
	Email               string     `gorm:"size:191;unique;not null" json:"email"`
	Password            string     `gorm:"size:100;not null" json:"-"`
	OnboardingCompleted bool       `gorm:"default:false" json:"onboardingCompleted"`
	LastLogin           *time.Time `json:"lastLogin,omitempty"`
	Profile             *Profile   `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName 使用邮箱前缀作为称呼
func (u *User) DisplayName() string {
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}
