package entity

import "time"

type Author struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	Name      string     `json:"name" bson:"name"`
	Bio       string     `json:"bio" bson:"bio"`
	BirthDate *time.Time `json:"birthDate,omitempty" bson:"birthDate,omitempty"`
}

func (a *Author) DocID() string      { return a.ID }
func (a *Author) SetDocID(id string) { a.ID = id }
