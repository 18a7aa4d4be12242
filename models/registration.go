package models

import "github.com/octabyte/alumni-portal/enums"

type Registration struct {
	Username  string     `json:"username" validate:"required"`
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required"`
	Password2 string     `json:"password2" validate:"required"`
	FirstName string     `json:"first_name" validate:"required"`
	LastName  string     `json:"last_name" validate:"required"`
	Role      enums.Role `json:"role" validate:"required"`
}
