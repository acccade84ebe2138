package entity

type Category struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	Name        string `json:"name" bson:"name"`
	Description string `json:"description" bson:"description"`
}

func (c *Category) DocID() string      { return c.ID }
func (c *Category) SetDocID(id string) { c.ID = id }
