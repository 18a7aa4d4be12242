package api

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/octabyte/alumni-portal/models"
)

func (s *ClientTestSuite) TestListVacancies() {
	s.handle("GET /api/vacancies/vacancies/", http.StatusOK, `[
		{"id":1,"title":"Go developer","location":"Almaty","is_active":true,"created_at":"2024-03-01T09:00:00Z","employer":{"id":2,"company_name":"Acme"}}
	]`)
	s.client.SetBearer("T1")

	vacancies, err := s.client.ListVacancies(context.Background())
	s.Require().NoError(err)
	s.Require().Len(vacancies, 1)
	s.Equal("Acme", vacancies[0].Employer.CompanyName)
	s.Equal("Bearer T1", s.lastRequest().Authorization)
}

func (s *ClientTestSuite) TestCreateAndDeleteVacancy() {
	s.handle("POST /api/vacancies/vacancies/", http.StatusCreated, `{"id":9,"title":"QA"}`)
	s.handle("DELETE /api/vacancies/vacancies/9/", http.StatusNoContent, ``)

	created, err := s.client.CreateVacancy(context.Background(), models.VacancyInput{Title: "QA", Description: "Testing", Location: "Remote", IsActive: true})
	s.Require().NoError(err)
	s.Equal(uint64(9), created.ID)

	var sent models.VacancyInput
	s.Require().NoError(json.Unmarshal(s.lastRequest().Body, &sent))
	s.True(sent.IsActive)

	s.Require().NoError(s.client.DeleteVacancy(context.Background(), 9))
	s.Equal(http.MethodDelete, s.lastRequest().Method)
}

func (s *ClientTestSuite) TestUpdateVacancy() {
	s.handle("PUT /api/vacancies/vacancies/9/", http.StatusOK, `{"id":9,"title":"Senior QA","is_active":false}`)

	updated, err := s.client.UpdateVacancy(context.Background(), 9, models.VacancyInput{Title: "Senior QA", Description: "Testing", Location: "Remote"})
	s.Require().NoError(err)
	s.Equal("Senior QA", updated.Title)
	s.Equal(http.MethodPut, s.lastRequest().Method)
	s.JSONEq(`{"title":"Senior QA","description":"Testing","requirements":"","location":"Remote","salary":"","is_active":false}`, string(s.lastRequest().Body))
}

func (s *ClientTestSuite) TestApplyToVacancy() {
	s.handle("POST /api/vacancies/apply/", http.StatusCreated, `{}`)

	s.Require().NoError(s.client.ApplyToVacancy(context.Background(), 4))

	var sent map[string]uint64
	s.Require().NoError(json.Unmarshal(s.lastRequest().Body, &sent))
	s.Equal(uint64(4), sent["vacancy_id"])
}

func (s *ClientTestSuite) TestListAlumniQuery() {
	s.handle("GET /api/alumni/alumni-profiles/", http.StatusOK, `[{"id":1,"graduation_year":2023,"specialty":"CS","is_employed":true,"user":{"id":4,"first_name":"Dana"}}]`)
	employed := true

	profiles, err := s.client.ListAlumni(context.Background(), AlumniFilter{GraduationYear: 2023, IsEmployed: &employed, Search: "dana"})
	s.Require().NoError(err)
	s.Len(profiles, 1)

	query, err := url.ParseQuery(s.lastRequest().Query)
	s.Require().NoError(err)
	s.Equal("2023", query.Get("graduation_year"))
	s.Equal("true", query.Get("is_employed"))
	s.Equal("dana", query.Get("search"))
}

func (s *ClientTestSuite) TestListAlumniWithoutFilter() {
	s.handle("GET /api/alumni/alumni-profiles/", http.StatusOK, `[]`)

	_, err := s.client.ListAlumni(context.Background(), AlumniFilter{})
	s.Require().NoError(err)
	s.Empty(s.lastRequest().Query)
}

func (s *ClientTestSuite) TestAlumniProfileLifecycle() {
	s.handle("GET /api/alumni/alumni-profiles/3/", http.StatusOK, `{"id":3,"graduation_year":2022,"specialty":"CS","user":{"id":5,"first_name":"Gina"}}`)
	s.handle("PUT /api/alumni/alumni-profiles/3/", http.StatusOK, `{"id":3}`)
	s.handle("DELETE /api/alumni/alumni-profiles/3/", http.StatusNoContent, ``)
	ctx := context.Background()

	profile, err := s.client.GetAlumniProfile(ctx, 3)
	s.Require().NoError(err)
	s.Equal("Gina", profile.User.FirstName)

	in := profile.Input()
	in.IsEmployed, in.Position = true, "Backend developer"
	s.Require().NoError(s.client.UpdateAlumniProfile(ctx, 3, in))
	s.JSONEq(`{"graduation_year":2022,"specialty":"CS","is_employed":true,"position":"Backend developer"}`, string(s.lastRequest().Body))

	s.Require().NoError(s.client.DeleteAlumniProfile(ctx, 3))
	s.Equal(http.MethodDelete, s.lastRequest().Method)
}

func (s *ClientTestSuite) TestUploadResumeSendsMultipart() {
	s.handle("PUT /api/alumni/alumni-profiles/3/", http.StatusOK, `{"id":3,"resume":"/media/resumes/cv.pdf"}`)

	err := s.client.UploadResume(context.Background(), 3, "cv.pdf", strings.NewReader("%PDF-1.4"))
	s.Require().NoError(err)

	req := s.lastRequest()
	mediaType, params, err := mime.ParseMediaType(req.ContentType)
	s.Require().NoError(err)
	s.Equal("multipart/form-data", mediaType)

	part, err := multipart.NewReader(bytes.NewReader(req.Body), params["boundary"]).NextPart()
	s.Require().NoError(err)
	s.Equal("resume", part.FormName())
	s.Equal("cv.pdf", part.FileName())
	content, err := io.ReadAll(part)
	s.Require().NoError(err)
	s.Equal("%PDF-1.4", string(content))
}

func (s *ClientTestSuite) TestRemoveResumeSendsNull() {
	s.handle("PUT /api/alumni/alumni-profiles/3/", http.StatusOK, `{"id":3,"resume":null}`)

	s.Require().NoError(s.client.RemoveResume(context.Background(), 3))
	s.JSONEq(`{"resume":null}`, string(s.lastRequest().Body))
	s.Contains(s.lastRequest().ContentType, "application/json")
}

func (s *ClientTestSuite) TestUpdateAndDeleteEmployer() {
	s.handle("PUT /api/employers/employers/2/", http.StatusOK, `{"id":2}`)
	s.handle("DELETE /api/employers/employers/2/", http.StatusNoContent, ``)
	ctx := context.Background()

	s.Require().NoError(s.client.UpdateEmployer(ctx, 2, models.EmployerInput{CompanyName: "Acme", Phone: "+7 700 000 0000"}))
	s.JSONEq(`{"company_name":"Acme","address":"","phone":"+7 700 000 0000","description":""}`, string(s.lastRequest().Body))

	s.Require().NoError(s.client.DeleteEmployer(ctx, 2))
	s.Equal(http.MethodDelete, s.lastRequest().Method)
}

func (s *ClientTestSuite) TestEmployersAndResumes() {
	s.handle("GET /api/employers/employers/", http.StatusOK, `[{"id":2,"company_name":"Acme","user":{"id":8}}]`)
	s.handle("GET /api/employers/employers/2/", http.StatusOK, `{"id":2,"company_name":"Acme","user":"acme-hr"}`)
	s.handle("GET /api/alumni/resumes/", http.StatusOK, `[{"id":1,"summary":"Backend","user":{"id":4,"first_name":"Dana"}}]`)

	employers, err := s.client.ListEmployers(context.Background())
	s.Require().NoError(err)
	s.Equal(uint64(8), employers[0].User.ID)

	employer, err := s.client.GetEmployer(context.Background(), 2)
	s.Require().NoError(err)
	s.Equal("acme-hr", employer.User.Username)

	resumes, err := s.client.ListResumes(context.Background())
	s.Require().NoError(err)
	s.Equal("Backend", resumes[0].Summary)
}

func (s *ClientTestSuite) TestEmploymentStatsDropsNullYear() {
	s.handle("GET /api/analytics/employment-stats/", http.StatusOK, `{
		"2022": {"total": 10, "employed": 7, "unemployed": 3, "percent_employed": 70.0},
		"null": {"total": 2, "employed": 0, "unemployed": 2, "percent_employed": 0}
	}`)

	stats, err := s.client.EmploymentStats(context.Background())
	s.Require().NoError(err)
	s.Len(stats, 1)
	s.Equal(7, stats["2022"].Employed)
}

func (s *ClientTestSuite) TestGetVacancyNotFound() {
	_, err := s.client.GetVacancy(context.Background(), 404)
	s.Equal(http.StatusNotFound, StatusCode(err))
}
