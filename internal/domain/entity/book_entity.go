package entity

import "time"

// BookStats holds counters owned by the server. Favorites never drops below zero.
type BookStats struct {
	Favorites int64 `json:"favorites" bson:"favorites"`
	Purchases int64 `json:"purchases" bson:"purchases"`
}

type Book struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	Title         string    `json:"title" bson:"title"`
	AuthorID      string    `json:"authorId" bson:"authorId"`
	PublisherID   string    `json:"publisherId" bson:"publisherId"`
	ISBN          string    `json:"isbn" bson:"isbn"`
	Price         float64   `json:"price" bson:"price"`
	Stock         int       `json:"stock" bson:"stock"`
	CategoryIDs   []string  `json:"categoryIds" bson:"categoryIds"`
	Description   string    `json:"description" bson:"description"`
	CoverImageURL string    `json:"coverImageUrl" bson:"coverImageUrl"`
	PublishedDate time.Time `json:"publishedDate" bson:"publishedDate"`
	Stats         BookStats `json:"stats" bson:"stats"`
}

func (b *Book) DocID() string      { return b.ID }
func (b *Book) SetDocID(id string) { b.ID = id }

// Stored field names used in queries
const (
	BookFieldTitle       = "title"
	BookFieldAuthorID    = "authorId"
	BookFieldPublisherID = "publisherId"
	BookFieldCategoryIDs = "categoryIds"
	BookFieldFavorites   = "stats.favorites"
)
