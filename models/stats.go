package models

type EmploymentStat struct {
	Total           int     `json:"total"`
	Employed        int     `json:"employed"`
	Unemployed      int     `json:"unemployed"`
	PercentEmployed float64 `json:"percent_employed"`
}

// EmploymentStats is keyed by graduation year.
type EmploymentStats map[string]EmploymentStat
