package entity

type Publisher struct {
	ID      string `json:"id" bson:"_id,omitempty"`
	Name    string `json:"name" bson:"name"`
	Address string `json:"address" bson:"address"`
	Contact string `json:"contact" bson:"contact"`
}

func (p *Publisher) DocID() string      { return p.ID }
func (p *Publisher) SetDocID(id string) { p.ID = id }
