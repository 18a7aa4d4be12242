// Package listing filters and orders data the REST API has already returned.
package listing

import (
	"sort"
	"strconv"
	"strings"

	"github.com/octabyte/alumni-portal/enums"
	"github.com/octabyte/alumni-portal/models"
)

type SortOrder int

const (
	Unsorted SortOrder = iota
	OldestFirst
	NewestFirst
)

// ParseSortOrder reads the "asc"/"desc" query values. Anything else keeps
// the API's order.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return OldestFirst
	case "desc":
		return NewestFirst
	default:
		return Unsorted
	}
}

// ParseBool reads an optional "true"/"false" filter. Empty or malformed
// values mean no filter.
func ParseBool(s string) *bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &b
}

// Search keeps the items where any of fields contains query,
// case-insensitively. An empty query keeps everything.
func Search[T any](items []T, query string, fields func(T) []string) []T {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, f := range fields(item) {
			if strings.Contains(strings.ToLower(f), query) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// Find returns the first item matching match.
func Find[T any](items []T, match func(T) bool) (T, bool) {
	for _, item := range items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

type VacancyQuery struct {
	Search string
	Active *bool
	Sort   SortOrder
}

func vacancyFields(v models.Vacancy) []string {
	return []string{v.Title, v.Location, v.Employer.CompanyName}
}

// FilterVacancies searches title, location and company name, then applies
// the active filter and the creation-time order. The input is not modified.
func FilterVacancies(vacancies []models.Vacancy, q VacancyQuery) []models.Vacancy {
	found := Search(vacancies, q.Search, vacancyFields)

	out := make([]models.Vacancy, 0, len(found))
	for _, v := range found {
		if q.Active != nil && v.IsActive != *q.Active {
			continue
		}
		out = append(out, v)
	}

	switch q.Sort {
	case OldestFirst:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	case NewestFirst:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out
}

// OnlyAlumni drops profiles whose user is not a graduate. Profiles with no
// role information are kept.
func OnlyAlumni(profiles []models.AlumniProfile) []models.AlumniProfile {
	out := make([]models.AlumniProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.User.Role != "" {
			if role, ok := enums.ParseRole(p.User.Role); !ok || role != enums.RoleGraduate {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func SearchEmployers(employers []models.Employer, query string) []models.Employer {
	return Search(employers, query, func(e models.Employer) []string {
		return []string{e.CompanyName, e.Address, e.User.Email}
	})
}

// SearchResumes matches the owner's full name, skills and experience.
func SearchResumes(resumes []models.Resume, query string) []models.Resume {
	return Search(resumes, query, func(r models.Resume) []string {
		return []string{r.User.FirstName + " " + r.User.LastName, r.Skills, r.Experience}
	})
}
