package portal

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/octabyte/alumni-portal/api"
	"github.com/octabyte/alumni-portal/enums"
	"github.com/octabyte/alumni-portal/listing"
	"github.com/octabyte/alumni-portal/models"
)

var validate = validator.New()

type employerData struct {
	Employer        *models.Employer
	ActiveVacancies int
	TotalVacancies  int
}

// myEmployer finds the current user's company in the employer list.
func (s *Server) myEmployer(c echo.Context, cl *api.Client) (*models.Employer, error) {
	employers, err := cl.ListEmployers(c.Request().Context())
	if err != nil {
		return nil, err
	}
	userID := state(c).User.ID
	mine, ok := listing.Find(employers, func(e models.Employer) bool { return e.User.ID == userID })
	if !ok {
		return nil, nil
	}
	return &mine, nil
}

func (s *Server) employerDashboard(c echo.Context) error {
	p := page{Title: "Employer dashboard"}
	if c.QueryParam("updated") != "" {
		p.Notice = "Your company profile was updated."
	}
	cl, err := client(c)
	if err != nil {
		return err
	}

	mine, err := s.myEmployer(c, cl)
	if err != nil {
		return s.apiFailure(c, err, "error", p)
	}
	vacancies, err := cl.ListVacancies(c.Request().Context())
	if err != nil {
		return s.apiFailure(c, err, "error", p)
	}

	data := employerData{Employer: mine}
	if mine != nil {
		for _, v := range vacancies {
			if !ownedBy(v, *mine) {
				continue
			}
			data.TotalVacancies++
			if v.IsActive {
				data.ActiveVacancies++
			}
		}
	}
	p.Data = data
	return s.render(c, http.StatusOK, "employer", p)
}

// ownedBy matches a vacancy to an employer by id, or by company name when the
// API sent the employer as a bare name.
func ownedBy(v models.Vacancy, e models.Employer) bool {
	if v.Employer.ID != 0 {
		return v.Employer.ID == e.ID
	}
	return v.Employer.CompanyName != "" && v.Employer.CompanyName == e.CompanyName
}

func (s *Server) employerVacancies(c echo.Context) error {
	data := vacancyQuery(c)
	data.CreateLink = "/employer/vacancies/new"
	data.EditPrefix = "/employer/vacancies/"
	data.DeletePrefix = "/employer/vacancies/"
	p := page{Title: "My vacancies", Data: data}
	switch {
	case c.QueryParam("created") != "":
		p.Notice = "The vacancy was published."
	case c.QueryParam("updated") != "":
		p.Notice = "The vacancy was updated."
	case c.QueryParam("deleted") != "":
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

type vacancyFormData struct {
	Action string
	Submit string
	Input  models.VacancyInput
}

func vacancyInputForm(c echo.Context) models.VacancyInput {
	return models.VacancyInput{
		Title:        strings.TrimSpace(c.FormValue("title")),
		Description:  strings.TrimSpace(c.FormValue("description")),
		Requirements: strings.TrimSpace(c.FormValue("requirements")),
		Location:     strings.TrimSpace(c.FormValue("location")),
		Salary:       strings.TrimSpace(c.FormValue("salary")),
		IsActive:     c.FormValue("is_active") == "true",
	}
}

const msgVacancyRequired = "Title, description and location are required."

func (s *Server) vacancyForm(c echo.Context) error {
	data := vacancyFormData{Action: "/employer/vacancies/new", Submit: "Publish", Input: models.VacancyInput{IsActive: true}}
	return s.render(c, http.StatusOK, "vacancy_form", page{Title: "New vacancy", Data: data})
}

func (s *Server) createVacancy(c echo.Context) error {
	in := vacancyInputForm(c)
	p := page{Title: "New vacancy", Data: vacancyFormData{Action: "/employer/vacancies/new", Submit: "Publish", Input: in}}

	if err := validate.Struct(in); err != nil {
		p.Error = msgVacancyRequired
		return s.render(c, http.StatusUnprocessableEntity, "vacancy_form", p)
	}

	cl, err := client(c)
	if err != nil {
		return err
	}
	if _, err := cl.CreateVacancy(c.Request().Context(), in); err != nil {
		return s.apiFailure(c, err, "vacancy_form", p)
	}
	return c.Redirect(http.StatusSeeOther, "/employer/vacancies?created=1")
}

// editVacancyForm serves the vacancy edit form of both employers and admins;
// base is the role's vacancies route.
func (s *Server) editVacancyForm(base string) echo.HandlerFunc {
	return func(c echo.Context) error {
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
			return s.apiFailure(c, err, "error", page{Title: "Edit vacancy"})
		}

		data := vacancyFormData{Action: editAction(base, id), Submit: "Save", Input: vacancy.Input()}
		return s.render(c, http.StatusOK, "vacancy_form", page{Title: "Edit vacancy", Data: data})
	}
}

// updateVacancy saves the edit form and redirects to done(id).
func (s *Server) updateVacancy(base string, done func(id uint64) string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := vacancyID(c)
		if err != nil {
			return err
		}
		in := vacancyInputForm(c)
		p := page{Title: "Edit vacancy", Data: vacancyFormData{Action: editAction(base, id), Submit: "Save", Input: in}}

		if err := validate.Struct(in); err != nil {
			p.Error = msgVacancyRequired
			return s.render(c, http.StatusUnprocessableEntity, "vacancy_form", p)
		}

		cl, err := client(c)
		if err != nil {
			return err
		}
		if _, err := cl.UpdateVacancy(c.Request().Context(), id, in); err != nil {
			return s.apiFailure(c, err, "vacancy_form", p)
		}
		return c.Redirect(http.StatusSeeOther, done(id))
	}
}

func editAction(base string, id uint64) string {
	return base + strconv.FormatUint(id, 10) + "/edit"
}

// deleteVacancy removes a vacancy for employers and admins and redirects to
// the role's list.
func (s *Server) deleteVacancy(list string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := vacancyID(c)
		if err != nil {
			return err
		}
		cl, err := client(c)
		if err != nil {
			return err
		}
		if err := cl.DeleteVacancy(c.Request().Context(), id); err != nil {
			return s.apiFailure(c, err, "error", page{Title: "Delete vacancy"})
		}
		return c.Redirect(http.StatusSeeOther, list+"?deleted=1")
	}
}

type employerFormData struct {
	Action   string
	User     *models.UserUpdate
	Employer models.EmployerInput
	// Contact and DeleteAction are only set on the admin view.
	Contact      *models.ProfileUser
	DeleteAction string
}

func employerInputForm(c echo.Context) models.EmployerInput {
	return models.EmployerInput{
		CompanyName: strings.TrimSpace(c.FormValue("company_name")),
		Address:     strings.TrimSpace(c.FormValue("address")),
		Phone:       strings.TrimSpace(c.FormValue("phone")),
		Description: strings.TrimSpace(c.FormValue("description")),
	}
}

var errNoCompanyProfile = echo.NewHTTPError(http.StatusNotFound, "company profile not found")

func (s *Server) employerProfileForm(c echo.Context) error {
	p := page{Title: "Edit company profile"}
	cl, err := client(c)
	if err != nil {
		return err
	}
	mine, err := s.myEmployer(c, cl)
	if err != nil {
		return s.apiFailure(c, err, "error", p)
	}
	if mine == nil {
		return errNoCompanyProfile
	}

	user := userUpdate(state(c).User)
	p.Data = employerFormData{Action: "/employer/profile/edit", User: &user, Employer: mine.Input()}
	return s.render(c, http.StatusOK, "employer_form", p)
}

func (s *Server) updateEmployerProfile(c echo.Context) error {
	user := userUpdateForm(c)
	data := employerFormData{Action: "/employer/profile/edit", User: &user, Employer: employerInputForm(c)}
	p := page{Title: "Edit company profile", Data: data}
	if err := validate.Struct(struct {
		User     models.UserUpdate
		Employer models.EmployerInput
	}{user, data.Employer}); err != nil {
		p.Error = "Enter your name, a valid email and the company name."
		return s.render(c, http.StatusUnprocessableEntity, "employer_form", p)
	}

	cl, err := client(c)
	if err != nil {
		return err
	}
	mine, err := s.myEmployer(c, cl)
	if err != nil {
		return s.apiFailure(c, err, "employer_form", p)
	}
	if mine == nil {
		return errNoCompanyProfile
	}

	err = updateAccount(c.Request().Context(), cl, user, func(ctx context.Context) error {
		return cl.UpdateEmployer(ctx, mine.ID, data.Employer)
	})
	if err != nil {
		return s.apiFailure(c, err, "employer_form", p)
	}
	return c.Redirect(http.StatusSeeOther, "/employer/dashboard?updated=1")
}

type graduatesData struct {
	Search       string
	Year         string
	Employed     string
	Graduates    []models.AlumniProfile
	DetailPrefix string
}

// apiAlumniFilter holds the raw query values of the graduates filter form.
type apiAlumniFilter struct {
	search, year, employed string
}

func (f apiAlumniFilter) filter() api.AlumniFilter {
	year, _ := strconv.Atoi(strings.TrimSpace(f.year))
	return api.AlumniFilter{
		GraduationYear: year,
		IsEmployed:     listing.ParseBool(f.employed),
		Search:         strings.TrimSpace(f.search),
	}
}

// graduates serves both the employer and admin graduate lists. Filtering is
// done by the API; records of other roles are dropped here.
func (s *Server) graduates(c echo.Context) error {
	raw := apiAlumniFilter{
		search:   c.QueryParam("search"),
		year:     c.QueryParam("graduation_year"),
		employed: c.QueryParam("is_employed"),
	}
	data := graduatesData{Search: raw.search, Year: raw.year, Employed: raw.employed, DetailPrefix: graduatesBase(c)}
	p := page{Title: "Graduates", Data: data}
	if c.QueryParam("deleted") != "" {
		p.Notice = "The graduate profile was deleted."
	}

	cl, err := client(c)
	if err != nil {
		return err
	}
	profiles, err := cl.ListAlumni(c.Request().Context(), raw.filter())
	if err != nil {
		return s.apiFailure(c, err, "graduates", p)
	}

	data.Graduates = listing.OnlyAlumni(profiles)
	p.Data = data
	return s.render(c, http.StatusOK, "graduates", p)
}

// graduatesBase is the graduates route of the group serving the request.
func graduatesBase(c echo.Context) string {
	if strings.HasPrefix(c.Path(), "/admin/") {
		return "/admin/graduates/"
	}
	return "/employer/graduates/"
}

type graduateDetailData struct {
	Profile *models.AlumniProfile
	// Edit is set on the admin view only.
	Edit *models.AlumniProfileInput
}

// graduateDetail shows one alumni profile; admins also get the edit form.
func (s *Server) graduateDetail(c echo.Context) error {
	id, err := pathID(c, "graduate")
	if err != nil {
		return err
	}
	cl, err := client(c)
	if err != nil {
		return err
	}
	profile, err := cl.GetAlumniProfile(c.Request().Context(), id)
	if err != nil {
		return s.apiFailure(c, err, "error", page{Title: "Graduate"})
	}

	data := graduateDetailData{Profile: profile}
	if state(c).User.Role == enums.RoleAdmin {
		in := profile.Input()
		data.Edit = &in
	}
	p := page{Title: profile.User.FullName(), Data: data}
	if p.Title == "" {
		p.Title = "Graduate"
	}
	if c.QueryParam("updated") != "" {
		p.Notice = "The graduate profile was updated."
	}
	return s.render(c, http.StatusOK, "graduate", p)
}
