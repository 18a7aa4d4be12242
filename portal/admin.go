package portal

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/octabyte/alumni-portal/listing"
	"github.com/octabyte/alumni-portal/models"
)

type statsData struct {
	listing.Summary
	Selected string
}

func (s *Server) adminDashboard(c echo.Context) error {
	year := c.QueryParam("year")
	if year == "" {
		year = listing.AllYears
	}
	p := page{Title: "Employment statistics", Data: statsData{Selected: year}}

	cl, err := client(c)
	if err != nil {
		return err
	}
	stats, err := cl.EmploymentStats(c.Request().Context())
	if err != nil {
		return s.apiFailure(c, err, "stats", p)
	}

	p.Data = statsData{Summary: listing.Summarize(stats, year), Selected: year}
	return s.render(c, http.StatusOK, "stats", p)
}

// exportStats writes the rows shown on the statistics page as CSV.
func (s *Server) exportStats(c echo.Context) error {
	year := c.QueryParam("year")
	if year == "" {
		year = listing.AllYears
	}
	cl, err := client(c)
	if err != nil {
		return err
	}
	stats, err := cl.EmploymentStats(c.Request().Context())
	if err != nil {
		return s.apiFailure(c, err, "stats", page{Title: "Employment statistics", Data: statsData{Selected: year}})
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="employment_stats.csv"`)
	res.WriteHeader(http.StatusOK)

	w := csv.NewWriter(res)
	_ = w.Write([]string{"year", "total", "employed", "unemployed", "percent_employed"})
	for _, row := range listing.Summarize(stats, year).Rows {
		_ = w.Write([]string{
			row.Year,
			strconv.Itoa(row.Total),
			strconv.Itoa(row.Employed),
			strconv.Itoa(row.Unemployed),
			decimal.NewFromFloat(row.PercentEmployed).String() + "%",
		})
	}
	w.Flush()
	return w.Error()
}

type employersData struct {
	Search    string
	Employers []models.Employer
}

func (s *Server) adminEmployers(c echo.Context) error {
	data := employersData{Search: c.QueryParam("search")}
	p := page{Title: "Employers", Data: data}
	if c.QueryParam("deleted") != "" {
		p.Notice = "The employer was deleted."
	}

	cl, err := client(c)
	if err != nil {
		return err
	}
	employers, err := cl.ListEmployers(c.Request().Context())
	if err != nil {
		return s.apiFailure(c, err, "employers", p)
	}

	data.Employers = listing.SearchEmployers(employers, data.Search)
	p.Data = data
	return s.render(c, http.StatusOK, "employers", p)
}

func (s *Server) adminVacancies(c echo.Context) error {
	data := vacancyQuery(c)
	data.DetailPrefix = "/admin/vacancies/"
	data.DeletePrefix = "/admin/vacancies/"
	p := page{Title: "All vacancies", Data: data}
	if c.QueryParam("deleted") != "" {
		p.Notice = "The vacancy was deleted."
	}

	cl, err := client(c)
	if err != nil {
		return err
	}
	all, err := cl.ListVacancies(c.Request().Context())
	if err != nil {
		return s.apiFailure(c, err, "vacancies", p)
	}

	data.Vacancies = listing.FilterVacancies(all, data.Query)
	p.Data = data
	return s.render(c, http.StatusOK, "vacancies", p)
}

func (s *Server) adminVacancy(c echo.Context) error {
	id, err := vacancyID(c)
	if err != nil {
		return err
	}
	cl, err := client(c)
	if err != nil {
		return err
	}
	vacancy, err := cl.GetVacancy(c.Request().Context(), id)
	if err != nil {
		return s.apiFailure(c, err, "error", page{Title: "Vacancy"})
	}

	p := page{Title: vacancy.Title, Data: vacancy}
	if c.QueryParam("updated") != "" {
		p.Notice = "The vacancy was updated."
	}
	return s.render(c, http.StatusOK, "vacancy_admin", p)
}

func adminVacancyRoute(id uint64) string {
	return "/admin/vacancies/" + strconv.FormatUint(id, 10) + "?updated=1"
}

func (s *Server) updateGraduate(c echo.Context) error {
	id, err := pathID(c, "graduate")
	if err != nil {
		return err
	}
	cl, err := client(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	in := alumniProfileForm(c)
	if err := validate.Struct(in); err != nil {
		p := page{Title: "Graduate", Error: "The graduation year must be between 1900 and 2100."}
		if profile, getErr := cl.GetAlumniProfile(ctx, id); getErr == nil {
			p.Title, p.Data = profile.User.FullName(), graduateDetailData{Profile: profile, Edit: &in}
			return s.render(c, http.StatusUnprocessableEntity, "graduate", p)
		}
		return s.render(c, http.StatusUnprocessableEntity, "error", p)
	}

	if err := cl.UpdateAlumniProfile(ctx, id, in); err != nil {
		return s.apiFailure(c, err, "error", page{Title: "Graduate"})
	}
	return c.Redirect(http.StatusSeeOther, "/admin/graduates/"+strconv.FormatUint(id, 10)+"?updated=1")
}

func (s *Server) deleteGraduate(c echo.Context) error {
	id, err := pathID(c, "graduate")
	if err != nil {
		return err
	}
	cl, err := client(c)
	if err != nil {
		return err
	}
	if err := cl.DeleteAlumniProfile(c.Request().Context(), id); err != nil {
		return s.apiFailure(c, err, "error", page{Title: "Delete graduate"})
	}
	return c.Redirect(http.StatusSeeOther, "/admin/graduates?deleted=1")
}

func employerAction(id uint64) string {
	return "/admin/employers/" + strconv.FormatUint(id, 10)
}

func (s *Server) adminEmployer(c echo.Context) error {
	id, err := pathID(c, "employer")
	if err != nil {
		return err
	}
	cl, err := client(c)
	if err != nil {
		return err
	}
	employer, err := cl.GetEmployer(c.Request().Context(), id)
	if err != nil {
		return s.apiFailure(c, err, "error", page{Title: "Employer"})
	}

	p := page{Title: employer.CompanyName, Data: employerFormData{
		Action:       employerAction(id),
		Employer:     employer.Input(),
		Contact:      &employer.User,
		DeleteAction: employerAction(id) + "/delete",
	}}
	if c.QueryParam("updated") != "" {
		p.Notice = "The employer was updated."
	}
	return s.render(c, http.StatusOK, "employer_form", p)
}

func (s *Server) updateEmployer(c echo.Context) error {
	id, err := pathID(c, "employer")
	if err != nil {
		return err
	}
	in := employerInputForm(c)
	p := page{Title: "Employer", Data: employerFormData{
		Action:       employerAction(id),
		Employer:     in,
		DeleteAction: employerAction(id) + "/delete",
	}}
	if err := validate.Struct(in); err != nil {
		p.Error = "The company name is required."
		return s.render(c, http.StatusUnprocessableEntity, "employer_form", p)
	}

	cl, err := client(c)
	if err != nil {
		return err
	}
	if err := cl.UpdateEmployer(c.Request().Context(), id, in); err != nil {
		return s.apiFailure(c, err, "employer_form", p)
	}
	return c.Redirect(http.StatusSeeOther, employerAction(id)+"?updated=1")
}

func (s *Server) deleteEmployer(c echo.Context) error {
	id, err := pathID(c, "employer")
	if err != nil {
		return err
	}
	cl, err := client(c)
	if err != nil {
		return err
	}
	if err := cl.DeleteEmployer(c.Request().Context(), id); err != nil {
		return s.apiFailure(c, err, "error", page{Title: "Delete employer"})
	}
	return c.Redirect(http.StatusSeeOther, "/admin/employers?deleted=1")
}

type resumesData struct {
	Search  string
	Resumes []models.Resume
}

func (s *Server) adminResumes(c echo.Context) error {
	data := resumesData{Search: c.QueryParam("search")}
	p := page{Title: "Resumes", Data: data}

	cl, err := client(c)
	if err != nil {
		return err
	}
	resumes, err := cl.ListResumes(c.Request().Context())
	if err != nil {
		return s.apiFailure(c, err, "resumes", p)
	}

	data.Resumes = listing.SearchResumes(resumes, data.Search)
	p.Data = data
	return s.render(c, http.StatusOK, "resumes", p)
}
