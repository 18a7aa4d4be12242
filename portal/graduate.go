package portal

import (
	"context"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/octabyte/alumni-portal/api"
	"github.com/octabyte/alumni-portal/listing"
	"github.com/octabyte/alumni-portal/models"
)

type vacanciesData struct {
	Query        listing.VacancyQuery
	Active       string
	Sort         string
	ShowFilters  bool
	Vacancies    []models.Vacancy
	DetailPrefix string
	EditPrefix   string
	DeletePrefix string
	CreateLink   string
}

func vacancyQuery(c echo.Context) vacanciesData {
	active, sort := c.QueryParam("is_active"), c.QueryParam("sort")
	return vacanciesData{
		Query: listing.VacancyQuery{
			Search: c.QueryParam("search"),
			Active: listing.ParseBool(active),
			Sort:   listing.ParseSortOrder(sort),
		},
		Active: active,
		Sort:   sort,
	}
}

// myAlumniProfile finds the current user's profile in the alumni list.
func (s *Server) myAlumniProfile(c echo.Context) (*models.AlumniProfile, error) {
	cl, err := client(c)
	if err != nil {
		return nil, err
	}
	profiles, err := cl.ListAlumni(c.Request().Context(), apiAlumniFilter{}.filter())
	if err != nil {
		return nil, err
	}

	userID := state(c).User.ID
	profile, ok := listing.Find(profiles, func(p models.AlumniProfile) bool { return p.User.ID == userID })
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

var errNoGraduateProfile = echo.NewHTTPError(http.StatusNotFound, "graduate profile not found")

func (s *Server) graduateProfile(c echo.Context) error {
	p := page{Title: "My profile"}
	if c.QueryParam("updated") != "" {
		p.Notice = "Your profile was updated."
	}
	profile, err := s.myAlumniProfile(c)
	if err != nil {
		return s.apiFailure(c, err, "profile", p)
	}
	p.Data = profile
	return s.render(c, http.StatusOK, "profile", p)
}

type profileFormData struct {
	User    models.UserUpdate
	Profile models.AlumniProfileInput
}

func userUpdate(u *models.User) models.UserUpdate {
	if u == nil {
		return models.UserUpdate{}
	}
	return models.UserUpdate{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

func userUpdateForm(c echo.Context) models.UserUpdate {
	return models.UserUpdate{
		FirstName: strings.TrimSpace(c.FormValue("first_name")),
		LastName:  strings.TrimSpace(c.FormValue("last_name")),
		Email:     strings.TrimSpace(c.FormValue("email")),
	}
}

func alumniProfileForm(c echo.Context) models.AlumniProfileInput {
	year, _ := strconv.Atoi(strings.TrimSpace(c.FormValue("graduation_year")))
	return models.AlumniProfileInput{
		GraduationYear: year,
		Specialty:      strings.TrimSpace(c.FormValue("specialty")),
		IsEmployed:     c.FormValue("is_employed") == "true",
		Position:       strings.TrimSpace(c.FormValue("position")),
	}
}

// updateAccount sends the user record update and the role profile update
// concurrently; the first failure is returned.
func updateAccount(ctx context.Context, cl *api.Client, user models.UserUpdate, profile func(context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return cl.UpdateMe(ctx, user) })
	g.Go(func() error { return profile(ctx) })
	return g.Wait()
}

func (s *Server) graduateProfileForm(c echo.Context) error {
	p := page{Title: "Edit profile"}
	profile, err := s.myAlumniProfile(c)
	if err != nil {
		return s.apiFailure(c, err, "error", p)
	}
	if profile == nil {
		return errNoGraduateProfile
	}
	p.Data = profileFormData{User: userUpdate(state(c).User), Profile: profile.Input()}
	return s.render(c, http.StatusOK, "profile_form", p)
}

func (s *Server) updateGraduateProfile(c echo.Context) error {
	data := profileFormData{User: userUpdateForm(c), Profile: alumniProfileForm(c)}
	p := page{Title: "Edit profile", Data: data}
	if err := validate.Struct(data); err != nil {
		p.Error = "Enter your name, a valid email and a graduation year between 1900 and 2100."
		return s.render(c, http.StatusUnprocessableEntity, "profile_form", p)
	}

	cl, err := client(c)
	if err != nil {
		return err
	}
	profile, err := s.myAlumniProfile(c)
	if err != nil {
		return s.apiFailure(c, err, "profile_form", p)
	}
	if profile == nil {
		return errNoGraduateProfile
	}

	err = updateAccount(c.Request().Context(), cl, data.User, func(ctx context.Context) error {
		return cl.UpdateAlumniProfile(ctx, profile.ID, data.Profile)
	})
	if err != nil {
		return s.apiFailure(c, err, "profile_form", p)
	}
	return c.Redirect(http.StatusSeeOther, "/graduate/profile?updated=1")
}

const maxResumeSize = 5 << 20

func (s *Server) graduateResume(c echo.Context) error {
	p := page{Title: "My resume"}
	switch {
	case c.QueryParam("uploaded") != "":
		p.Notice = "Your resume was uploaded."
	case c.QueryParam("removed") != "":
		p.Notice = "Your resume was removed."
	}
	profile, err := s.myAlumniProfile(c)
	if err != nil {
		return s.apiFailure(c, err, "resume", p)
	}
	p.Data = profile
	return s.render(c, http.StatusOK, "resume", p)
}

func (s *Server) uploadResume(c echo.Context) error {
	p := page{Title: "My resume"}
	profile, err := s.myAlumniProfile(c)
	if err != nil {
		return s.apiFailure(c, err, "resume", p)
	}
	if profile == nil {
		return errNoGraduateProfile
	}
	p.Data = profile

	header, err := c.FormFile("resume")
	if err != nil || header.Size == 0 {
		p.Error = "Choose a file to upload."
		return s.render(c, http.StatusUnprocessableEntity, "resume", p)
	}
	if header.Size > maxResumeSize {
		p.Error = "The file is larger than 5 MB."
		return s.render(c, http.StatusRequestEntityTooLarge, "resume", p)
	}
	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	cl, err := client(c)
	if err != nil {
		return err
	}
	if err := cl.UploadResume(c.Request().Context(), profile.ID, filepath.Base(header.Filename), file); err != nil {
		return s.apiFailure(c, err, "resume", p)
	}
	return c.Redirect(http.StatusSeeOther, "/graduate/resume?uploaded=1")
}

func (s *Server) removeResume(c echo.Context) error {
	p := page{Title: "My resume"}
	profile, err := s.myAlumniProfile(c)
	if err != nil {
		return s.apiFailure(c, err, "resume", p)
	}
	if profile == nil {
		return errNoGraduateProfile
	}
	p.Data = profile

	cl, err := client(c)
	if err != nil {
		return err
	}
	if err := cl.RemoveResume(c.Request().Context(), profile.ID); err != nil {
		return s.apiFailure(c, err, "resume", p)
	}
	return c.Redirect(http.StatusSeeOther, "/graduate/resume?removed=1")
}

func (s *Server) graduateVacancies(c echo.Context) error {
	data := vacancyQuery(c)
	data.ShowFilters = true
	data.DetailPrefix = "/graduate/vacancies/"
	p := page{Title: "Vacancies", Data: data}

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

// pathID parses the :id route parameter; anything but a positive integer is a 404.
func pathID(c echo.Context, what string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, what+" not found")
	}
	return id, nil
}

func vacancyID(c echo.Context) (uint64, error) {
	return pathID(c, "vacancy")
}

func (s *Server) graduateVacancy(c echo.Context) error {
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
	if c.QueryParam("applied") != "" {
		p.Notice = "Your application was sent."
	}
	return s.render(c, http.StatusOK, "vacancy", p)
}

func (s *Server) applyToVacancy(c echo.Context) error {
	id, err := vacancyID(c)
	if err != nil {
		return err
	}
	cl, err := client(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := cl.ApplyToVacancy(ctx, id); err != nil {
		p := page{Title: "Vacancy"}
		if vacancy, getErr := cl.GetVacancy(ctx, id); getErr == nil {
			p.Title, p.Data = vacancy.Title, vacancy
			return s.apiFailure(c, err, "vacancy", p)
		}
		return s.apiFailure(c, err, "error", p)
	}
	return c.Redirect(http.StatusSeeOther, "/graduate/vacancies/"+strconv.FormatUint(id, 10)+"?applied=1")
}
