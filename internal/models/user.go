package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserType string

const (
	UserTypeConsumer UserType = "consumer"
	UserTypeOwner    UserType = "owner"
	UserTypeBroker   UserType = "broker"
	UserTypeDriver   UserType = "driver"
)

type User struct {
	gorm.Model   // This embeds ID, CreatedAt, UpdatedAt, and DeletedAt
	Username     string `gorm:"column:username;unique;not null"`
	Email        string `gorm:"column:email;unique;not null"`
	Password     string `gorm:"-" json:"-"` // Temporary field for password handling
	PasswordHash string `gorm:"column:password_hash;not null"`
	PhoneNumber  string `gorm:"column:phone_number"`
	UserType     string `gorm:"column:user_type;not null"`
	CompanyName  string `gorm:"column:company_name"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// IsServiceProvider reports whether the user can bid on trips.
// Owners, brokers and drivers are collectively the service-provider side.
func (u *User) IsServiceProvider() bool {
	switch UserType(u.UserType) {
	case UserTypeOwner, UserTypeBroker, UserTypeDriver:
		return true
	}
	return false
}

// NegotiationRole returns the role recorded on bids made by this user.
func (u *User) NegotiationRole() string {
	if u.IsServiceProvider() {
		return RoleProvider
	}
	return RoleConsumer
}
