package entities

import (
	"strings"

	"pessoas-backend/domain/core/validators"
	"pessoas-backend/domain/core/valueobjects"
)

// Person is a registered person record. Records are created once and never
// updated, so the struct doubles as the wire representation.
type Person struct {
	ID        valueobjects.PersonID `json:"id"`
	Nickname  string                `json:"apelido"`
	Name      string                `json:"nome"`
	BirthDate valueobjects.Date     `json:"nascimento"`
	Stack     []string              `json:"stack"`
}

var personValidator = validators.NewPersonValidator()

// NewPerson creates a person with a freshly generated identifier after
// checking the domain rules.
func NewPerson(nickname, name string, birthDate valueobjects.Date, stack []string) (*Person, error) {
	if err := personValidator.Validate(nickname, name, birthDate, stack); err != nil {
		return nil, err
	}
	return &Person{
		ID:        valueobjects.NewPersonID(),
		Nickname:  nickname,
		Name:      name,
		BirthDate: birthDate,
		Stack:     stack,
	}, nil
}

// SearchText derives the denormalized text the store indexes for substring
// search: the lowercase concatenation of name, nickname and the space-joined
// stack. It is recomputed on demand rather than stored on the entity.
func (p *Person) SearchText() string {
	return strings.ToLower(p.Name + " " + p.Nickname + " " + strings.Join(p.Stack, " "))
}
