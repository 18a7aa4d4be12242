package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/octabyte/alumni-portal/models"
)

const (
	vacanciesPath = "/vacancies/vacancies/"
	applyPath     = "/vacancies/apply/"
	alumniPath    = "/alumni/alumni-profiles/"
	resumesPath   = "/alumni/resumes/"
	employersPath = "/employers/employers/"
	statsPath     = "/analytics/employment-stats/"
)

// AlumniFilter maps to the query parameters the alumni endpoint understands.
type AlumniFilter struct {
	GraduationYear int
	IsEmployed     *bool
	Search         string
}

func (f AlumniFilter) query() map[string]string {
	q := map[string]string{}
	if f.GraduationYear > 0 {
		q["graduation_year"] = strconv.Itoa(f.GraduationYear)
	}
	if f.IsEmployed != nil {
		q["is_employed"] = strconv.FormatBool(*f.IsEmployed)
	}
	if f.Search != "" {
		q["search"] = f.Search
	}
	return q
}

func (c *Client) ListVacancies(ctx context.Context) ([]models.Vacancy, error) {
	var out []models.Vacancy
	err := c.do(ctx, call{op: "vacancies.list", method: http.MethodGet, path: vacanciesPath, out: &out})
	return out, err
}

func (c *Client) GetVacancy(ctx context.Context, id uint64) (*models.Vacancy, error) {
	var out models.Vacancy
	if err := c.do(ctx, call{op: "vacancies.get", method: http.MethodGet, path: itemPath(vacanciesPath, id), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateVacancy(ctx context.Context, in models.VacancyInput) (*models.Vacancy, error) {
	var out models.Vacancy
	if err := c.do(ctx, call{op: "vacancies.create", method: http.MethodPost, path: vacanciesPath, body: in, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateVacancy(ctx context.Context, id uint64, in models.VacancyInput) (*models.Vacancy, error) {
	var out models.Vacancy
	if err := c.do(ctx, call{op: "vacancies.update", method: http.MethodPut, path: itemPath(vacanciesPath, id), body: in, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteVacancy(ctx context.Context, id uint64) error {
	return c.do(ctx, call{op: "vacancies.delete", method: http.MethodDelete, path: itemPath(vacanciesPath, id)})
}

func (c *Client) ApplyToVacancy(ctx context.Context, vacancyID uint64) error {
	return c.do(ctx, call{
		op:     "vacancies.apply",
		method: http.MethodPost,
		path:   applyPath,
		body:   map[string]uint64{"vacancy_id": vacancyID},
	})
}

func (c *Client) ListAlumni(ctx context.Context, filter AlumniFilter) ([]models.AlumniProfile, error) {
	var out []models.AlumniProfile
	err := c.do(ctx, call{op: "alumni.list", method: http.MethodGet, path: alumniPath, query: filter.query(), out: &out})
	return out, err
}

func (c *Client) GetAlumniProfile(ctx context.Context, id uint64) (*models.AlumniProfile, error) {
	var out models.AlumniProfile
	if err := c.do(ctx, call{op: "alumni.get", method: http.MethodGet, path: itemPath(alumniPath, id), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAlumniProfile(ctx context.Context, id uint64, in models.AlumniProfileInput) error {
	return c.do(ctx, call{op: "alumni.update", method: http.MethodPut, path: itemPath(alumniPath, id), body: in})
}

func (c *Client) DeleteAlumniProfile(ctx context.Context, id uint64) error {
	return c.do(ctx, call{op: "alumni.delete", method: http.MethodDelete, path: itemPath(alumniPath, id)})
}

// UploadResume replaces the resume file of an alumni profile.
func (c *Client) UploadResume(ctx context.Context, profileID uint64, filename string, r io.Reader) error {
	return c.do(ctx, call{
		op:     "alumni.upload_resume",
		method: http.MethodPut,
		path:   itemPath(alumniPath, profileID),
		file:   &upload{field: "resume", name: filename, r: r},
	})
}

func (c *Client) RemoveResume(ctx context.Context, profileID uint64) error {
	return c.do(ctx, call{
		op:     "alumni.remove_resume",
		method: http.MethodPut,
		path:   itemPath(alumniPath, profileID),
		body:   map[string]interface{}{"resume": nil},
	})
}

func (c *Client) ListResumes(ctx context.Context) ([]models.Resume, error) {
	var out []models.Resume
	err := c.do(ctx, call{op: "resumes.list", method: http.MethodGet, path: resumesPath, out: &out})
	return out, err
}

func (c *Client) ListEmployers(ctx context.Context) ([]models.Employer, error) {
	var out []models.Employer
	err := c.do(ctx, call{op: "employers.list", method: http.MethodGet, path: employersPath, out: &out})
	return out, err
}

func (c *Client) GetEmployer(ctx context.Context, id uint64) (*models.Employer, error) {
	var out models.Employer
	if err := c.do(ctx, call{op: "employers.get", method: http.MethodGet, path: itemPath(employersPath, id), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateEmployer(ctx context.Context, id uint64, in models.EmployerInput) error {
	return c.do(ctx, call{op: "employers.update", method: http.MethodPut, path: itemPath(employersPath, id), body: in})
}

func (c *Client) DeleteEmployer(ctx context.Context, id uint64) error {
	return c.do(ctx, call{op: "employers.delete", method: http.MethodDelete, path: itemPath(employersPath, id)})
}

// EmploymentStats returns per-graduation-year figures. Profiles without a
// graduation year are reported by the API under "null" and are dropped.
func (c *Client) EmploymentStats(ctx context.Context) (models.EmploymentStats, error) {
	out := models.EmploymentStats{}
	if err := c.do(ctx, call{op: "analytics.employment_stats", method: http.MethodGet, path: statsPath, out: &out}); err != nil {
		return nil, err
	}
	delete(out, "null")
	return out, nil
}

func itemPath(collection string, id uint64) string {
	return fmt.Sprintf("%s%d/", collection, id)
}
