package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"donation-widget/internal/database"
	"donation-widget/internal/embed"
	"donation-widget/internal/models"
	"donation-widget/internal/projectfile"
	"donation-widget/internal/validation"

	"github.com/go-chi/chi/v5"
)

// ValidateProject reports every issue of a project without storing it
func (a *App) ValidateProject(w http.ResponseWriter, r *http.Request) {
	var project models.Project
	if err := decodeJSON(w, r, &project); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.json(w, http.StatusOK, validation.Validate(project))
}

func (a *App) CreateProject(w http.ResponseWriter, r *http.Request) {
	var project models.Project
	if err := decodeJSON(w, r, &project); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.saveProject(w, r, project)
}

// ImportProject accepts an exported project file, JSON or YAML by Content-Type
func (a *App) ImportProject(w http.ResponseWriter, r *http.Request) {
	format := projectfile.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = projectfile.FormatYAML
	}

	project, err := projectfile.Import(http.MaxBytesReader(w, r.Body, maxBodyBytes), format)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.saveProject(w, r, project)
}

// saveProject stores a project that passes validation
func (a *App) saveProject(w http.ResponseWriter, r *http.Request, project models.Project) {
	project = project.WithDefaults()
	verdict := validation.Validate(project)
	if !verdict.Valid {
		a.fail(w, r, verdict.Err(), verdict)
		return
	}

	if err := a.Projects.SaveProject(r.Context(), project); err != nil {
		a.fail(w, r, err, nil)
		return
	}

	a.Logger.Info().
		Str("projectId", project.ID).
		Int("recipients", len(project.Recipients)).
		Msg("Project saved")
	a.json(w, http.StatusCreated, project)
}

func (a *App) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := a.Projects.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err, nil)
		return
	}
	a.json(w, http.StatusOK, project)
}

// ExportProject downloads a project as an indented JSON file
func (a *App) ExportProject(w http.ResponseWriter, r *http.Request) {
	project, err := a.Projects.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err, nil)
		return
	}

	data, err := projectfile.Export(project)
	if err != nil {
		a.fail(w, r, err, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", projectfile.FileName(project)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type embedResponse struct {
	Kind embed.Kind `json:"kind"`
	Code string     `json:"code"`
}

// EmbedProject renders the project in the request body
func (a *App) EmbedProject(w http.ResponseWriter, r *http.Request) {
	kind, err := embed.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		a.fail(w, r, err, nil)
		return
	}

	var project models.Project
	if err := decodeJSON(w, r, &project); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.renderEmbed(w, r, project, kind)
}

// StoredProjectEmbed renders a saved project
func (a *App) StoredProjectEmbed(w http.ResponseWriter, r *http.Request) {
	kind, err := embed.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		a.fail(w, r, err, nil)
		return
	}

	project, err := a.Projects.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err, nil)
		return
	}
	a.renderEmbed(w, r, project, kind)
}

func (a *App) renderEmbed(w http.ResponseWriter, r *http.Request, project models.Project, kind embed.Kind) {
	code, err := a.Embed.Generate(project, kind)
	if err != nil {
		a.fail(w, r, err, validation.Validate(project))
		return
	}
	a.json(w, http.StatusOK, embedResponse{Kind: kind, Code: code})
}

// ListTransfers pages through the recorded transfers of a project
func (a *App) ListTransfers(w http.ResponseWriter, r *http.Request) {
	if a.Transfers == nil {
		a.error(w, http.StatusNotImplemented, "not_implemented", "transfer log is not enabled")
		return
	}

	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 500 {
		a.error(w, http.StatusBadRequest, "bad_request", "limit must be between 1 and 500")
		return
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "offset must not be negative")
		return
	}

	transfers, err := a.Transfers.ListTransfers(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		a.fail(w, r, err, nil)
		return
	}
	if transfers == nil {
		transfers = []database.Transfer{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": transfers})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}
