package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	UserName     string    `json:"userName" gorm:"size:100"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"size:20;not null;default:user"`
	Phone        string    `json:"phone,omitempty" gorm:"size:30"`
	IsVerified   bool      `json:"isVerified" gorm:"not null;default:false"`
	IsActive     bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// PasswordReset is a single-use reset link. Only the token hash is stored.
type PasswordReset struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	UserID    int64      `json:"userId" gorm:"index;not null"`
	TokenHash string     `json:"-" gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time  `json:"expiresAt" gorm:"index;not null"`
	UsedAt    *time.Time `json:"usedAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (p *PasswordReset) Usable(now time.Time) bool {
	return p.UsedAt == nil && now.Before(p.ExpiresAt)
}
