// Package templates provides embedded templates for manifest scaffolding.
package templates

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"text/template"
)

//go:embed manifest/*.tmpl
var manifestTemplates embed.FS

// Template names.
const (
	Model   = "model.yaml"
	Example = "example.yaml"
)

// ManifestData contains the data used to render manifest templates.
type ManifestData struct {
	// FileName is where the manifest is written, used in hints.
	FileName    string
	Name        string
	Version     string
	Description string
	// System names the root subsystem.
	System     string
	Subsystems []string
	Users      []string
	// MassLimit is the threshold of the generated mass requirement, e.g. "100kg".
	MassLimit string
}

// ApplyDefaults fills in empty fields.
func (d *ManifestData) ApplyDefaults() {
	if d.Name == "" {
		d.Name = "My System"
	}
	if d.System == "" {
		d.System = d.Name
	}
	if d.Version == "" {
		d.Version = "0.1.0"
	}
	if d.MassLimit == "" {
		d.MassLimit = "100kg"
	}
	if d.FileName == "" {
		d.FileName = "model.yaml"
	}
}

var funcs = template.FuncMap{
	"quote": strconv.Quote,
}

// ManifestTemplates returns the parsed manifest templates.
func ManifestTemplates() (*template.Template, error) {
	tmpl := template.New("").Funcs(funcs)

	err := fs.WalkDir(manifestTemplates, "manifest", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}

		content, err := manifestTemplates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", path, err)
		}

		// Use filename without .tmpl as template name
		name := strings.TrimPrefix(path, "manifest/")
		name = strings.TrimSuffix(name, ".tmpl")

		_, err = tmpl.New(name).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return tmpl, nil
}

// Render writes the named template for data.
func Render(w io.Writer, name string, data ManifestData) error {
	tmpl, err := ManifestTemplates()
	if err != nil {
		return err
	}
	if tmpl.Lookup(name) == nil {
		return fmt.Errorf("unknown template: %s", name)
	}
	data.ApplyDefaults()
	return tmpl.ExecuteTemplate(w, name, data)
}
