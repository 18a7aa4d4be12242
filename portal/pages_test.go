package portal

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/octabyte/alumni-portal/enums"
)

const ginaProfiles = `[{"id":3,"graduation_year":2024,"specialty":"Computer Science","is_employed":false,"resume":"/media/resumes/gina.pdf","user":{"id":5,"first_name":"Gina","last_name":"Grad","email":"g@example.com"}}]`

const ginaProfile = `{"id":3,"graduation_year":2024,"specialty":"Computer Science","is_employed":false,"user":{"id":5,"first_name":"Gina","last_name":"Grad","email":"g@example.com"}}`

func (s *PortalTestSuite) TestGraduateEditsProfile() {
	s.signIn("gina", enums.RoleGraduate)
	s.handle("GET /api/alumni/alumni-profiles/", http.StatusOK, ginaProfiles)
	s.handle("PUT /api/users/me/", http.StatusOK, `{}`)
	s.handle("PUT /api/alumni/alumni-profiles/3/", http.StatusOK, `{}`)

	rec := s.get("/graduate/profile/edit")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `value="Gina"`)
	s.Contains(rec.Body.String(), `value="Computer Science"`)
	s.Contains(rec.Body.String(), `value="2024"`)

	rec = s.post("/graduate/profile/edit", url.Values{
		"first_name":      {"Gina"},
		"last_name":       {"Grad"},
		"email":           {"gina@example.com"},
		"graduation_year": {"2024"},
		"specialty":       {"Software Engineering"},
		"is_employed":     {"true"},
		"position":        {"Backend developer"},
	})
	s.assertRedirect(rec, "/graduate/profile?updated=1")

	me := s.apiCalls(http.MethodPut, "/api/users/me/")
	s.Require().Len(me, 1)
	s.JSONEq(`{"first_name":"Gina","last_name":"Grad","email":"gina@example.com"}`, string(me[0].Body))
	s.Equal("Bearer TG", me[0].Authorization)

	profile := s.apiCalls(http.MethodPut, "/api/alumni/alumni-profiles/3/")
	s.Require().Len(profile, 1)
	s.JSONEq(`{"graduation_year":2024,"specialty":"Software Engineering","is_employed":true,"position":"Backend developer"}`, string(profile[0].Body))

	s.Contains(s.get("/graduate/profile?updated=1").Body.String(), "Your profile was updated.")
}

func (s *PortalTestSuite) TestGraduateProfileEditValidates() {
	s.signIn("gina", enums.RoleGraduate)

	rec := s.post("/graduate/profile/edit", url.Values{
		"first_name": {"Gina"},
		"last_name":  {"Grad"},
		"email":      {"not-an-email"},
	})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), `value="not-an-email"`)
	s.Empty(s.apiCalls(http.MethodPut, "/api/users/me/"))
}

func (s *PortalTestSuite) TestGraduateWithoutProfileCannotEdit() {
	s.signIn("gina", enums.RoleGraduate)
	s.handle("GET /api/alumni/alumni-profiles/", http.StatusOK, `[]`)

	s.Equal(http.StatusNotFound, s.get("/graduate/profile/edit").Code)
}

func (s *PortalTestSuite) TestGraduateUploadsResume() {
	s.signIn("gina", enums.RoleGraduate)
	s.handle("GET /api/alumni/alumni-profiles/", http.StatusOK, ginaProfiles)
	s.handle("PUT /api/alumni/alumni-profiles/3/", http.StatusOK, `{"id":3}`)

	s.assertRedirect(s.upload("/graduate/resume", "resume", "cv.pdf", "%PDF-1.4"), "/graduate/resume?uploaded=1")

	calls := s.apiCalls(http.MethodPut, "/api/alumni/alumni-profiles/3/")
	s.Require().Len(calls, 1)
	mediaType, params, err := mime.ParseMediaType(calls[0].ContentType)
	s.Require().NoError(err)
	s.Equal("multipart/form-data", mediaType)

	part, err := multipart.NewReader(bytes.NewReader(calls[0].Body), params["boundary"]).NextPart()
	s.Require().NoError(err)
	s.Equal("resume", part.FormName())
	s.Equal("cv.pdf", part.FileName())
	content, err := io.ReadAll(part)
	s.Require().NoError(err)
	s.Equal("%PDF-1.4", string(content))
	s.Equal("Bearer TG", calls[0].Authorization)
}

func (s *PortalTestSuite) TestGraduateUploadWithoutFile() {
	s.signIn("gina", enums.RoleGraduate)
	s.handle("GET /api/alumni/alumni-profiles/", http.StatusOK, ginaProfiles)

	rec := s.upload("/graduate/resume", "resume", "", "")
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), "Choose a file to upload.")
	s.Empty(s.apiCalls(http.MethodPut, "/api/alumni/alumni-profiles/3/"))
}

func (s *PortalTestSuite) TestGraduateRemovesResume() {
	s.signIn("gina", enums.RoleGraduate)
	s.handle("GET /api/alumni/alumni-profiles/", http.StatusOK, ginaProfiles)
	s.handle("PUT /api/alumni/alumni-profiles/3/", http.StatusOK, `{"id":3,"resume":null}`)

	rec := s.get("/graduate/resume")
	s.Contains(rec.Body.String(), `action="/graduate/resume/delete"`)
	s.Contains(rec.Body.String(), `enctype="multipart/form-data"`)

	s.assertRedirect(s.post("/graduate/resume/delete", nil), "/graduate/resume?removed=1")
	calls := s.apiCalls(http.MethodPut, "/api/alumni/alumni-profiles/3/")
	s.Require().Len(calls, 1)
	s.JSONEq(`{"resume":null}`, string(calls[0].Body))
}

const eveEmployers = `[{"id":2,"company_name":"Kaspi","address":"Almaty","user":{"id":6}}]`

func (s *PortalTestSuite) TestEmployerEditsCompanyProfile() {
	s.signIn("eve", enums.RoleEmployer)
	s.handle("GET /api/employers/employers/", http.StatusOK, eveEmployers)
	s.handle("PUT /api/users/me/", http.StatusOK, `{}`)
	s.handle("PUT /api/employers/employers/2/", http.StatusOK, `{}`)

	rec := s.get("/employer/profile/edit")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `value="Kaspi"`)
	s.Contains(rec.Body.String(), `value="Eve"`)

	rec = s.post("/employer/profile/edit", url.Values{
		"first_name":   {"Eve"},
		"last_name":    {"Boss"},
		"email":        {"eve@kaspi.kz"},
		"company_name": {"Kaspi Bank"},
		"address":      {"Almaty"},
	})
	s.assertRedirect(rec, "/employer/dashboard?updated=1")

	calls := s.apiCalls(http.MethodPut, "/api/employers/employers/2/")
	s.Require().Len(calls, 1)
	s.JSONEq(`{"company_name":"Kaspi Bank","address":"Almaty","phone":"","description":""}`, string(calls[0].Body))
	s.Len(s.apiCalls(http.MethodPut, "/api/users/me/"), 1)
}

func (s *PortalTestSuite) TestEmployerProfileRequiresCompanyName() {
	s.signIn("eve", enums.RoleEmployer)

	rec := s.post("/employer/profile/edit", url.Values{"first_name": {"Eve"}, "last_name": {"Boss"}, "email": {"eve@kaspi.kz"}})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Empty(s.apiCalls(http.MethodPut, "/api/employers/employers/2/"))
}

const goVacancy = `{"id":1,"title":"Go Developer","description":"Build services","location":"Almaty","is_active":true,"created_at":"2026-03-02T10:00:00Z","employer":{"id":2,"company_name":"Kaspi"}}`

func (s *PortalTestSuite) TestEmployerEditsVacancy() {
	s.signIn("eve", enums.RoleEmployer)
	s.handle("GET /api/vacancies/vacancies/", http.StatusOK, vacanciesJSON)
	s.handle("GET /api/vacancies/vacancies/1/", http.StatusOK, goVacancy)
	s.handle("PUT /api/vacancies/vacancies/1/", http.StatusOK, goVacancy)

	rec := s.get("/employer/vacancies")
	s.Contains(rec.Body.String(), `href="/employer/vacancies/1/edit"`)
	s.Contains(rec.Body.String(), `action="/employer/vacancies/1/delete"`)

	rec = s.get("/employer/vacancies/1/edit")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `action="/employer/vacancies/1/edit"`)
	s.Contains(rec.Body.String(), `value="Go Developer"`)
	s.Contains(rec.Body.String(), "checked")

	rec = s.post("/employer/vacancies/1/edit", url.Values{"title": {"Go Developer"}})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Empty(s.apiCalls(http.MethodPut, "/api/vacancies/vacancies/1/"))

	rec = s.post("/employer/vacancies/1/edit", url.Values{
		"title":       {"Senior Go Developer"},
		"description": {"Build services"},
		"location":    {"Almaty"},
		"salary":      {"900000"},
	})
	s.assertRedirect(rec, "/employer/vacancies?updated=1")

	calls := s.apiCalls(http.MethodPut, "/api/vacancies/vacancies/1/")
	s.Require().Len(calls, 1)
	s.JSONEq(`{"title":"Senior Go Developer","description":"Build services","requirements":"","location":"Almaty","salary":"900000","is_active":false}`, string(calls[0].Body))
}

func (s *PortalTestSuite) TestEmployerDeletesVacancy() {
	s.signIn("eve", enums.RoleEmployer)
	s.handle("DELETE /api/vacancies/vacancies/1/", http.StatusNoContent, ``)

	s.assertRedirect(s.post("/employer/vacancies/1/delete", nil), "/employer/vacancies?deleted=1")
	s.Len(s.apiCalls(http.MethodDelete, "/api/vacancies/vacancies/1/"), 1)
}

func (s *PortalTestSuite) TestEmployerViewsGraduate() {
	s.signIn("eve", enums.RoleEmployer)
	s.handle("GET /api/alumni/alumni-profiles/3/", http.StatusOK, ginaProfile)

	rec := s.get("/employer/graduates/3")
	s.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	s.Contains(body, "Gina Grad")
	s.Contains(body, "g@example.com")
	s.NotContains(body, "/admin/graduates/3/delete")
}

func (s *PortalTestSuite) TestAdminEditsAndDeletesGraduate() {
	s.signIn("alice", enums.RoleAdmin)
	s.handle("GET /api/alumni/alumni-profiles/", http.StatusOK, `[{"id":3,"user":{"id":5,"first_name":"Gina","role":"ALUMNI"}}]`)
	s.handle("GET /api/alumni/alumni-profiles/3/", http.StatusOK, ginaProfile)
	s.handle("PUT /api/alumni/alumni-profiles/3/", http.StatusOK, `{}`)
	s.handle("DELETE /api/alumni/alumni-profiles/3/", http.StatusNoContent, ``)

	s.Contains(s.get("/admin/graduates").Body.String(), `href="/admin/graduates/3"`)

	rec := s.get("/admin/graduates/3")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `action="/admin/graduates/3"`)
	s.Contains(rec.Body.String(), `action="/admin/graduates/3/delete"`)

	rec = s.post("/admin/graduates/3", url.Values{"graduation_year": {"1800"}})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), "between 1900 and 2100")
	s.Empty(s.apiCalls(http.MethodPut, "/api/alumni/alumni-profiles/3/"))

	rec = s.post("/admin/graduates/3", url.Values{
		"graduation_year": {"2024"},
		"specialty":       {"Computer Science"},
		"is_employed":     {"true"},
		"position":        {"Analyst"},
	})
	s.assertRedirect(rec, "/admin/graduates/3?updated=1")
	calls := s.apiCalls(http.MethodPut, "/api/alumni/alumni-profiles/3/")
	s.Require().Len(calls, 1)
	s.JSONEq(`{"graduation_year":2024,"specialty":"Computer Science","is_employed":true,"position":"Analyst"}`, string(calls[0].Body))

	s.assertRedirect(s.post("/admin/graduates/3/delete", nil), "/admin/graduates?deleted=1")
	s.Len(s.apiCalls(http.MethodDelete, "/api/alumni/alumni-profiles/3/"), 1)
}

func (s *PortalTestSuite) TestAdminEmployerDetail() {
	s.signIn("alice", enums.RoleAdmin)
	s.handle("GET /api/employers/employers/2/", http.StatusOK,
		`{"id":2,"company_name":"Kaspi","address":"Almaty","user":{"id":6,"first_name":"Eve","last_name":"Boss","email":"eve@kaspi.kz"}}`)
	s.handle("PUT /api/employers/employers/2/", http.StatusOK, `{}`)
	s.handle("DELETE /api/employers/employers/2/", http.StatusNoContent, ``)

	rec := s.get("/admin/employers/2")
	s.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	s.Contains(body, `value="Kaspi"`)
	s.Contains(body, "Eve Boss")
	s.Contains(body, `action="/admin/employers/2/delete"`)
	s.NotContains(body, `name="first_name"`)

	s.assertRedirect(s.post("/admin/employers/2", url.Values{"company_name": {"Kaspi Bank"}}), "/admin/employers/2?updated=1")
	calls := s.apiCalls(http.MethodPut, "/api/employers/employers/2/")
	s.Require().Len(calls, 1)
	s.JSONEq(`{"company_name":"Kaspi Bank","address":"","phone":"","description":""}`, string(calls[0].Body))

	s.assertRedirect(s.post("/admin/employers/2/delete", nil), "/admin/employers?deleted=1")
	s.Len(s.apiCalls(http.MethodDelete, "/api/employers/employers/2/"), 1)
}

func (s *PortalTestSuite) TestAdminEmployerNotFound() {
	s.signIn("alice", enums.RoleAdmin)
	s.handle("GET /api/employers/employers/9/", http.StatusNotFound, `{"detail":"Not found."}`)

	rec := s.get("/admin/employers/9")
	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "Not found.")
}

func (s *PortalTestSuite) TestAdminVacancyDetailAndEdit() {
	s.signIn("alice", enums.RoleAdmin)
	s.handle("GET /api/vacancies/vacancies/", http.StatusOK, vacanciesJSON)
	s.handle("GET /api/vacancies/vacancies/1/", http.StatusOK, goVacancy)
	s.handle("PUT /api/vacancies/vacancies/1/", http.StatusOK, goVacancy)

	s.Contains(s.get("/admin/vacancies").Body.String(), `href="/admin/vacancies/1"`)

	rec := s.get("/admin/vacancies/1")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Kaspi")
	s.Contains(rec.Body.String(), `href="/admin/vacancies/1/edit"`)
	s.Contains(rec.Body.String(), `action="/admin/vacancies/1/delete"`)

	s.Contains(s.get("/admin/vacancies/1/edit").Body.String(), `action="/admin/vacancies/1/edit"`)

	rec = s.post("/admin/vacancies/1/edit", url.Values{
		"title":       {"Go Developer"},
		"description": {"Build services"},
		"location":    {"Astana"},
		"is_active":   {"true"},
	})
	s.assertRedirect(rec, "/admin/vacancies/1?updated=1")
	s.Len(s.apiCalls(http.MethodPut, "/api/vacancies/vacancies/1/"), 1)
}

func (s *PortalTestSuite) TestAdminExportsStats() {
	s.signIn("alice", enums.RoleAdmin)
	s.handle("GET /api/analytics/employment-stats/", http.StatusOK,
		`{"2023":{"total":5,"employed":4,"unemployed":1,"percent_employed":80},"2024":{"total":3,"employed":1,"unemployed":2,"percent_employed":33.3}}`)

	rec := s.get("/admin/dashboard/export")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("text/csv; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	s.Contains(rec.Header().Get(echo.HeaderContentDisposition), "employment_stats.csv")
	s.Equal("year,total,employed,unemployed,percent_employed\n2023,5,4,1,80%\n2024,3,1,2,33.3%\n", rec.Body.String())

	rec = s.get("/admin/dashboard/export?year=2024")
	s.Equal("year,total,employed,unemployed,percent_employed\n2024,3,1,2,33.3%\n", rec.Body.String())

	s.Contains(s.get("/admin/dashboard?year=2024").Body.String(), `href="/admin/dashboard/export?year=2024"`)
}
