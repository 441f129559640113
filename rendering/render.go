package rendering

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/template"

	log "github.com/sirupsen/logrus"

	"github.com/altnet-labs/vpsnetd/netsync"
)

// Template names the kea and radvd consumers are rendered from.
const (
	KeaTemplate   = "kea.conf.tmpl"
	RadvdTemplate = "radvd.conf.tmpl"
)

//go:embed templates/*.tmpl
var builtin embed.FS

// Renderer turns a reconciled interface list into the config files of
// the DHCP and RA daemons. Built-in templates can be overridden per
// file by dropping same-named *.tmpl files into a directory.
type Renderer struct {
	t *template.Template
}

func New(overrideDir string) (*Renderer, error) {
	t, err := template.New("vpsnetd").Funcs(funcMap).ParseFS(builtin, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in templates: %w", err)
	}

	if overrideDir != "" {
		glob := filepath.Join(overrideDir, "*.tmpl")
		matches, err := filepath.Glob(glob)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			log.Debugf("loading template overrides from %s", glob)
			if t, err = t.ParseGlob(glob); err != nil {
				return nil, fmt.Errorf("failed to parse templates in %s: %w", overrideDir, err)
			}
		}
	}

	return &Renderer{t: t}, nil
}

// Kea renders the DHCP4 server config. The result is guaranteed to be
// well-formed JSON; kea itself is the judge of everything beyond that.
func (r *Renderer) Kea(ifaces []netsync.Iface) ([]byte, error) {
	out, err := r.render(KeaTemplate, ifaces)
	if err != nil {
		return nil, err
	}
	if !json.Valid(out) {
		return nil, fmt.Errorf("rendered kea config is not valid JSON")
	}
	return out, nil
}

// Radvd renders the router advertisement daemon config.
func (r *Renderer) Radvd(ifaces []netsync.Iface) ([]byte, error) {
	return r.render(RadvdTemplate, ifaces)
}

func (r *Renderer) render(name string, ifaces []netsync.Iface) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := r.t.ExecuteTemplate(buf, name, ifaces); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
