package domain

import "fmt"

// Question is one entry of a message's question section.
// UnicastResponse is the mDNS QU bit carried in the top bit of the class field.
type Question struct {
	Name            Name
	Type            RRType
	Class           RRClass
	UnicastResponse bool
}

// NewQuestion constructs a Question and validates its fields.
func NewQuestion(name Name, rrtype RRType, class RRClass) (Question, error) {
	q := Question{
		Name:  name,
		Type:  rrtype,
		Class: class,
	}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Validate checks whether the Question fields are structurally valid.
func (q Question) Validate() error {
	if q.Name.IsRoot() {
		return fmt.Errorf("question name must not be empty")
	}
	if q.Type == 0 {
		return fmt.Errorf("unsupported RRType: %d", q.Type)
	}
	if q.Class == 0 {
		return fmt.Errorf("unsupported RRClass: %d", q.Class)
	}
	return nil
}

func (q Question) String() string {
	qu := ""
	if q.UnicastResponse {
		qu = " (QU)"
	}
	return fmt.Sprintf("%s %s%s %s", q.Name, q.Class, qu, q.Type)
}
