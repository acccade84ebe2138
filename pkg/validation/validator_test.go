package validation

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type authorInput struct {
	Name     string   `json:"name" validate:"required,min=10,max=100"`
	AuthorID string   `json:"authorId" validate:"required,objectid"`
	Price    float64  `json:"price" validate:"gte=0"`
	Tags     []string `json:"tags" validate:"max=2"`
	Password string   `json:"password" validate:"omitempty,strongpwd"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestToDetailsUsesJSONNames(t *testing.T) {
	err := newValidator().Struct(authorInput{
		Name:     "short",
		AuthorID: "not-an-id",
		Price:    -1,
		Tags:     []string{"a", "b", "c"},
		Password: "weak",
	})
	details := ToDetails(err)

	assert.Equal(t, "must be at least 10 characters long", details["name"])
	assert.Equal(t, "must be a valid object id", details["authorId"])
	assert.Equal(t, "must be greater than or equal to 0", details["price"])
	assert.Equal(t, "must contain at most 2 items", details["tags"])
	assert.Contains(t, details["password"], "uppercase")
}

func TestValidInputPasses(t *testing.T) {
	err := newValidator().Struct(authorInput{
		Name:     "Ursula K. Le Guin",
		AuthorID: "66310f0c9d1e4a6b7c8d9e0f",
		Password: "Secret1!",
	})
	assert.NoError(t, err)
	assert.Nil(t, ToDetails(nil))
}

func TestToDetailsJSONErrors(t *testing.T) {
	var dst authorInput
	err := json.Unmarshal([]byte(`{"name":`), &dst)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{"price":"free"}`), &dst)
	assert.Equal(t, "must be of type float64", ToDetails(err)["price"])
}

func TestIsObjectID(t *testing.T) {
	assert.True(t, IsObjectID("66310f0c9d1e4a6b7c8d9e0f"))
	assert.False(t, IsObjectID("66310f0c9d1e4a6b7c8d9e0"))
	assert.False(t, IsObjectID("zz310f0c9d1e4a6b7c8d9e0f"))
}
