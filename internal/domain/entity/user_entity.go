package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// PasswordHash holds a bcrypt hash, never the plain password.
type User struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	Username        string    `json:"username" bson:"username"`
	Email           string    `json:"email" bson:"email"`
	PasswordHash    string    `json:"passwordHash" bson:"passwordHash"`
	FullName        string    `json:"fullName" bson:"fullName"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
	IsEmailVerified bool      `json:"isEmailVerified" bson:"isEmailVerified"`
}

func (u *User) DocID() string      { return u.ID }
func (u *User) SetDocID(id string) { u.ID = id }
