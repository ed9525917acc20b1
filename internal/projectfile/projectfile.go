// Package projectfile reads and writes project configuration files.
package projectfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"donation-widget/internal/models"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// FormatFromPath picks a format from a file extension, JSON by default
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// FileName is the download name of an exported project
func FileName(project models.Project) string {
	name := whitespaceRun.ReplaceAllString(strings.ToLower(project.Name), "-")
	return name + "-donation-config.json"
}

// Export renders project as indented JSON
func Export(project models.Project) ([]byte, error) {
	data, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project: %w", err)
	}
	return data, nil
}

// Import decodes a project. The result carries an id and a complete theme
// but is not validated.
func Import(r io.Reader, format Format) (models.Project, error) {
	var project models.Project

	data, err := io.ReadAll(r)
	if err != nil {
		return project, fmt.Errorf("failed to read project: %w", err)
	}

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &project)
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&project)
	default:
		return project, fmt.Errorf("unsupported project format %q", format)
	}
	if err != nil {
		return project, fmt.Errorf("failed to parse %s project: %w", format, err)
	}

	return project.WithDefaults(), nil
}

// Load imports a project file, format chosen by extension
func Load(path string) (models.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to open project file: %w", err)
	}
	defer f.Close()

	return Import(f, FormatFromPath(path))
}
