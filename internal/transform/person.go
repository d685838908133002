package transform

import (
	"log/slog"

	"github.com/DjordjeVuckovic/movies-etl/internal/domain"
	"github.com/google/uuid"
)

type PersonTransformer struct{}

func NewPersonTransformer() *PersonTransformer {
	return &PersonTransformer{}
}

// Transform builds one person per group. A credit with an unknown role still
// lists the movie but adds no role.
func (t *PersonTransformer) Transform(rows []domain.PersonRow) []domain.Person {
	groups := GroupRows(rows, func(r domain.PersonRow) uuid.UUID { return r.PersonID })

	persons := make([]domain.Person, 0, len(groups))
	for _, g := range groups {
		persons = append(persons, buildPerson(g))
	}
	return persons
}

func buildPerson(rows []domain.PersonRow) domain.Person {
	first := rows[0]
	p := domain.Person{
		ID:       first.PersonID,
		FullName: first.FullName,
		Modified: first.Modified,
		Roles:    []string{},
	}

	movies := newUniqueByID[domain.PersonMovie]()
	for _, r := range rows {
		if r.MovieID == nil {
			continue
		}
		i, _ := movies.add(*r.MovieID, domain.PersonMovie{
			ID:    *r.MovieID,
			Title: deref(r.MovieTitle),
			Roles: []string{},
		})

		role := domain.ParseRole(deref(r.RoleName))
		if role == domain.RoleUnknown {
			slog.Warn("Unknown person role, skipping role",
				"person_id", r.PersonID,
				"movie_id", *r.MovieID,
				"role", deref(r.RoleName),
			)
			continue
		}
		movies.items[i].Roles = appendUnique(movies.items[i].Roles, role.String())
		p.Roles = appendUnique(p.Roles, role.String())
	}
	p.Movies = movies.items

	return p
}
