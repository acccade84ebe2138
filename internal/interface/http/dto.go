package handlers

import (
	"time"

	"github.com/oksasatya/bookstore-backend/internal/application"
	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=100"`
	FullName string `json:"fullName" binding:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"max=100"`
	Password string `json:"password" binding:"omitempty,min=6,max=100"`
}

// UserResponse is the public view of a user. The password hash never leaves the service.
type UserResponse struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	FullName        string    `json:"fullName"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		FullName:        u.FullName,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func toUserResponses(users []entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

type loginResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

type bookRequest struct {
	Title         string     `json:"title" binding:"required,min=2,max=200"`
	AuthorID      string     `json:"authorId" binding:"required,objectid"`
	PublisherID   string     `json:"publisherId" binding:"required,objectid"`
	ISBN          string     `json:"isbn"`
	Price         float64    `json:"price" binding:"gte=0"`
	Stock         int        `json:"stock" binding:"gte=0"`
	CategoryIDs   []string   `json:"categoryIds" binding:"required,min=1,dive,objectid"`
	Description   string     `json:"description"`
	PublishedDate *time.Time `json:"publishedDate"`
}

func (r bookRequest) toInput() application.BookInput {
	in := application.BookInput{
		Title:       r.Title,
		AuthorID:    r.AuthorID,
		PublisherID: r.PublisherID,
		ISBN:        r.ISBN,
		Price:       r.Price,
		Stock:       r.Stock,
		CategoryIDs: r.CategoryIDs,
		Description: r.Description,
	}
	if r.PublishedDate != nil {
		in.PublishedDate = r.PublishedDate.UTC()
	}
	return in
}

type authorRequest struct {
	Name      string     `json:"name" binding:"required,min=10,max=100"`
	Bio       string     `json:"bio" binding:"omitempty,min=20,max=1000"`
	BirthDate *time.Time `json:"birthDate"`
}

func (r authorRequest) toEntity() *entity.Author {
	return &entity.Author{Name: r.Name, Bio: r.Bio, BirthDate: r.BirthDate}
}

type publisherRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

func (r publisherRequest) toEntity() *entity.Publisher {
	return &entity.Publisher{Name: r.Name, Address: r.Address, Contact: r.Contact}
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=50"`
	Description string `json:"description" binding:"required,min=10,max=1000"`
}

func (r categoryRequest) toEntity() *entity.Category {
	return &entity.Category{Name: r.Name, Description: r.Description}
}
