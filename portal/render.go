package portal

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/octabyte/alumni-portal/enums"
	"github.com/octabyte/alumni-portal/gate"
	"github.com/octabyte/alumni-portal/models"
	"github.com/octabyte/alumni-portal/utils"
)

//go:embed templates
var templatesFS embed.FS

const dateLayout = "02.01.2006"

// Raw HTML in markdown input is escaped since WithUnsafe is not set.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// page is the data every template receives.
type page struct {
	Title  string
	User   *models.User
	CSRF   string
	Error  string
	Notice string
	Data   interface{}
}

func (p page) Dashboard() string {
	return gate.DashboardRoute(p.User)
}

// Renderer renders each page inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer(timezone string) (*Renderer, error) {
	base, err := template.New("layout.html").Funcs(funcs(timezone)).ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templatesFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templatesFS, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.pages[strings.TrimSuffix(path.Base(file), ".html")] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

func funcs(timezone string) template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string {
			return utils.FormatDate(t, timezone, dateLayout)
		},
		"markdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := markdown.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"roleName": func(r enums.Role) string {
			switch r {
			case enums.RoleGraduate:
				return "Graduate"
			case enums.RoleEmployer:
				return "Employer"
			case enums.RoleAdmin:
				return "Administrator"
			default:
				return ""
			}
		},
		"yesno": func(b bool) string {
			if b {
				return "Yes"
			}
			return "No"
		},
	}
}
