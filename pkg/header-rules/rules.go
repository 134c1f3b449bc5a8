// Package headerrules applies configured response headers to rendered
// pages, matched by content path.
package headerrules

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

type Rules []Rule

type Rule struct {
	Prefix  string            `yaml:"prefix"`
	Path    string            `yaml:"path"`
	Headers map[string]string `yaml:"headers"`
}

// Apply sets the headers of the first matching rule.
// Only successful renders are touched.
func (r Rules) Apply(path string, status int, header http.Header) {
	if status != http.StatusOK {
		return
	}
	if rule := r.find(path); rule != nil {
		for name, value := range rule.Headers {
			log.Trace().Msgf("Setting header %s", name)
			header.Set(name, value)
		}
	}
}

func (r Rules) find(path string) *Rule {
	for _, rule := range r {
		if rule.Path != "" && rule.Path != path {
			continue
		}
		if rule.Prefix != "" && !strings.HasPrefix(path, rule.Prefix) {
			continue
		}
		return &rule
	}
	return nil
}
