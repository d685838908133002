package domain

import (
	"time"

	"github.com/google/uuid"
)

type PersonMovie struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Roles []string  `json:"roles"`
}

// Person lists every movie a person took part in, with the roles held in each.
type Person struct {
	ID       uuid.UUID     `json:"id"`
	FullName string        `json:"full_name"`
	Modified time.Time     `json:"-"`
	Roles    []string      `json:"roles"`
	Movies   []PersonMovie `json:"movies"`
}

func (p Person) DocumentID() string {
	return p.ID.String()
}

func (p Person) ModifiedAt() time.Time {
	return p.Modified
}

type PersonRow struct {
	PersonID   uuid.UUID
	FullName   string
	Modified   time.Time
	RoleName   *string
	MovieID    *uuid.UUID
	MovieTitle *string
}
