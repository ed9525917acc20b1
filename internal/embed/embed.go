// Package embed renders a project as one of the code snippets a creator can
// paste into a site.
package embed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strings"
	"text/template"

	"donation-widget/internal/models"
	"donation-widget/internal/validation"
)

const (
	Brand              = "YouBuidl"
	DefaultBaseURL     = "https://youbuidl.xyz"
	DefaultPackageName = "@youbuidl/donation-sdk"
)

// Kind is an embed output form
type Kind string

const (
	KindIframe  Kind = "iframe"
	KindButton  Kind = "button"
	KindLink    Kind = "link"
	KindQR      Kind = "qr"
	KindPackage Kind = "package"
)

// Kinds lists every output form in display order
var Kinds = []Kind{KindIframe, KindButton, KindLink, KindQR, KindPackage}

// ParseKind accepts the kind names plus "npm" for KindPackage
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindIframe, KindButton, KindLink, KindQR, KindPackage:
		return k, nil
	case "npm":
		return KindPackage, nil
	}
	return "", fmt.Errorf("%w: %q", models.ErrUnknownEmbedKind, s)
}

var templates = template.Must(template.New("embed").Funcs(template.FuncMap{
	"attr": html.EscapeString,
}).Parse(`
{{- define "iframe" -}}
<iframe
  src="{{.BaseURL}}/embed?project={{.Query}}"
  width="100%"
  height="400px"
  style="border:none;border-radius:12px;box-shadow:0 2px 8px rgba(0,0,0,0.1);"
  title="{{.Brand}} Donation Widget - {{attr .Project.Name}}"
></iframe>
{{- end -}}
{{- define "button" -}}
<button
  onclick="window.open('{{.BaseURL}}/donate?project={{.Query}}', 'youbuidl-donation-widget', 'width=400,height=600')"
  style="background:{{attr .Project.Theme.PrimaryColor}};color:white;padding:8px 16px;border-radius:{{.Radius}};border:none;cursor:pointer;font-family:system-ui,-apple-system,sans-serif;font-size:{{.FontSize}};"
>
  Support {{attr .Project.Name}}
</button>
{{- end -}}
{{- define "package" -}}
npm install {{.PackageName}}

import { DonationWidget } from '{{.PackageName}}';

const project = {{.PrettyJSON}};

<DonationWidget project={project} />
{{- end -}}
`))

type templateData struct {
	Brand       string
	BaseURL     string
	PackageName string
	Project     models.Project
	Query       string
	PrettyJSON  string
	Radius      string
	FontSize    string
}

// Generator renders embed snippets against a site base URL
type Generator struct {
	BaseURL     string
	PackageName string
}

func NewGenerator(baseURL, packageName string) *Generator {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if packageName == "" {
		packageName = DefaultPackageName
	}
	return &Generator{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		PackageName: packageName,
	}
}

// Generate renders project as kind. Every kind, the package reference
// included, requires a project that passes validation.
func (g *Generator) Generate(project models.Project, kind Kind) (string, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return "", err
	}
	if err := validation.Validate(project).Err(); err != nil {
		return "", err
	}

	compact, err := marshalProject(project, "")
	if err != nil {
		return "", err
	}
	query := EncodeURIComponent(compact)

	switch kind {
	case KindLink:
		return g.DonateURL(query), nil
	case KindQR:
		return fmt.Sprintf("%s/qr?project=%s", g.BaseURL, query), nil
	}

	data := templateData{
		Brand:       Brand,
		BaseURL:     g.BaseURL,
		PackageName: g.PackageName,
		Project:     project,
		Query:       query,
		Radius:      buttonRadius(project.Theme.ButtonStyle),
		FontSize:    fontSize(project.Theme.Size),
	}
	if kind == KindPackage {
		if data.PrettyJSON, err = marshalProject(project, "  "); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(kind), data); err != nil {
		return "", fmt.Errorf("failed to render %s embed: %w", kind, err)
	}
	return buf.String(), nil
}

// DonateURL is the donation page for an already encoded project payload
func (g *Generator) DonateURL(query string) string {
	return fmt.Sprintf("%s/donate?project=%s", g.BaseURL, query)
}

// EncodeURIComponent escapes s for a query value, encoding spaces as %20.
// Unlike the JavaScript function it also escapes !'()*.
func EncodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// DecodeProjectParam reverses the project query value of an embed URL
func DecodeProjectParam(value string) (models.Project, error) {
	var project models.Project
	raw, err := url.QueryUnescape(value)
	if err != nil {
		return project, fmt.Errorf("failed to unescape project data: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &project); err != nil {
		return project, fmt.Errorf("failed to parse project data: %w", err)
	}
	return project, nil
}

func marshalProject(project models.Project, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(project); err != nil {
		return "", fmt.Errorf("failed to marshal project: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func buttonRadius(style models.ButtonStyle) string {
	switch style {
	case models.ButtonPill:
		return "9999px"
	case models.ButtonRounded:
		return "8px"
	}
	return "4px"
}

func fontSize(size models.WidgetSize) string {
	switch size {
	case models.SizeSmall:
		return "14px"
	case models.SizeLarge:
		return "18px"
	}
	return "16px"
}
