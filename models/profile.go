package models

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
)

// ProfileUser is the user embedded in alumni, employer and resume records.
// The API sends it either as an object, a bare id or a bare username.
type ProfileUser struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
}

func (u *ProfileUser) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*u = ProfileUser{}
		return nil
	case data[0] == '"':
		var username string
		if err := json.Unmarshal(data, &username); err != nil {
			return err
		}
		*u = ProfileUser{Username: username}
		return nil
	case data[0] != '{':
		id, err := strconv.ParseUint(string(data), 10, 64)
		if err != nil {
			return err
		}
		*u = ProfileUser{ID: id}
		return nil
	}

	type plain ProfileUser
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*u = ProfileUser(p)
	return nil
}

func (u ProfileUser) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Username
	case u.LastName == "":
		return u.FirstName
	case u.FirstName == "":
		return u.LastName
	default:
		return u.FirstName + " " + u.LastName
	}
}

type AlumniProfile struct {
	ID             uint64      `json:"id"`
	GraduationYear int         `json:"graduation_year"`
	Specialty      string      `json:"specialty"`
	IsEmployed     bool        `json:"is_employed"`
	Position       string      `json:"position"`
	Resume         string      `json:"resume,omitempty"`
	User           ProfileUser `json:"user"`
}

type Employer struct {
	ID          uint64      `json:"id"`
	CompanyName string      `json:"company_name"`
	Address     string      `json:"address"`
	Phone       string      `json:"phone"`
	Description string      `json:"description"`
	User        ProfileUser `json:"user"`
}

type Resume struct {
	ID         uint64      `json:"id"`
	Summary    string      `json:"summary"`
	Experience string      `json:"experience"`
	Education  string      `json:"education"`
	Skills     string      `json:"skills"`
	CreatedAt  string      `json:"created_at"`
	User       ProfileUser `json:"user"`
}

// AlumniProfileInput is the body of an alumni profile update.
type AlumniProfileInput struct {
	GraduationYear int    `json:"graduation_year" validate:"omitempty,min=1900,max=2100"`
	Specialty      string `json:"specialty"`
	IsEmployed     bool   `json:"is_employed"`
	Position       string `json:"position"`
}

func (p AlumniProfile) Input() AlumniProfileInput {
	return AlumniProfileInput{GraduationYear: p.GraduationYear, Specialty: p.Specialty, IsEmployed: p.IsEmployed, Position: p.Position}
}

type EmployerInput struct {
	CompanyName string `json:"company_name" validate:"required"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
}

func (e Employer) Input() EmployerInput {
	return EmployerInput{CompanyName: e.CompanyName, Address: e.Address, Phone: e.Phone, Description: e.Description}
}
