package entity

import "time"

// FavoriteLink records that a user marked a book as favorite.
// At most one link exists per (UserID, BookID).
type FavoriteLink struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	UserID    string    `json:"userId" bson:"userId"`
	BookID    string    `json:"bookId" bson:"bookId"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

func (f *FavoriteLink) DocID() string      { return f.ID }
func (f *FavoriteLink) SetDocID(id string) { f.ID = id }
