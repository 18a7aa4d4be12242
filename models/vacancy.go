package models

import (
	"bytes"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// VacancyEmployer is the employer reference of a vacancy; like ProfileUser
// it may arrive as an object, an id or a company name.
type VacancyEmployer struct {
	ID          uint64 `json:"id"`
	CompanyName string `json:"company_name"`
}

func (e *VacancyEmployer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*e = VacancyEmployer{}
		return nil
	case data[0] == '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*e = VacancyEmployer{CompanyName: name}
		return nil
	case data[0] != '{':
		id, err := strconv.ParseUint(string(data), 10, 64)
		if err != nil {
			return err
		}
		*e = VacancyEmployer{ID: id}
		return nil
	}

	type plain VacancyEmployer
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = VacancyEmployer(p)
	return nil
}

type Vacancy struct {
	ID           uint64          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Requirements string          `json:"requirements"`
	Location     string          `json:"location"`
	Salary       string          `json:"salary"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	Employer     VacancyEmployer `json:"employer"`
}

type VacancyInput struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Requirements string `json:"requirements"`
	Location     string `json:"location" validate:"required"`
	Salary       string `json:"salary"`
	IsActive     bool   `json:"is_active"`
}

func (v Vacancy) Input() VacancyInput {
	return VacancyInput{
		Title:        v.Title,
		Description:  v.Description,
		Requirements: v.Requirements,
		Location:     v.Location,
		Salary:       v.Salary,
		IsActive:     v.IsActive,
	}
}
