package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string
type UserStatus string

const (
	UserRoleUser      UserRole = "user"
	UserRoleResponder UserRole = "responder"
	UserRoleAdmin     UserRole = "admin"

	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// EmergencyContact is a person the reporter wants notified when they
// raise an alert.
type EmergencyContact struct {
	Name     string `json:"name" bson:"name" validate:"required"`
	Phone    string `json:"phone" bson:"phone" validate:"required"`
	Relation string `json:"relation" bson:"relation"`
}

// DeviceToken identifies a push target for one of the user's devices.
type DeviceToken struct {
	Platform string `json:"platform" bson:"platform"` // fcm, apns
	Token    string `json:"token" bson:"token"`
}

type User struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name              string             `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email             string             `json:"email" bson:"email" validate:"required,email"`
	Phone             string             `json:"phone" bson:"phone" validate:"required"`
	Password          string             `json:"-" bson:"password"`
	Role              UserRole           `json:"role" bson:"role" default:"user"`
	Status            UserStatus         `json:"status" bson:"status" default:"active"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts" bson:"emergency_contacts"`
	DeviceTokens      []DeviceToken      `json:"device_tokens" bson:"device_tokens"`
	LastLocation      *Location          `json:"last_location" bson:"last_location"`
	LastActiveAt      *time.Time         `json:"last_active_at" bson:"last_active_at"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
