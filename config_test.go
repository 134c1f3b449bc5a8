package contentgate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/content-gate/content-gate/store"
)

const testConfigYAML = `
port: 8080
db: content.db
cacheTTL: 30m
refreshInterval: 1m
rawErrorsRequireAuth: true
errorPages:
  notFound: /errors/404
headerRules:
  - prefix: /blog
    headers:
      Cache-Control: public
layouts:
  minimal: "<main>{{.Content}}</main>"
pages:
  - path: /
    name: Home
  - path: /volatile
    name: Volatile
    cacheable: false
    state: draft
attachments:
  - path: /files/report.pdf
    fileName: report.pdf
    fileType: application/pdf
    fileLocation: /data/report.pdf
redirects:
  - from: /old
    to: /new
`

func loadTestConfig(t *testing.T) FileConfig {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(filename, []byte(testConfigYAML), 0644); err != nil {
		t.Fatal(err)
	}
	config, err := LoadConfig(filename)
	if err != nil {
		t.Fatal(err)
	}
	return config
}

func TestLoadConfig(t *testing.T) {
	config := loadTestConfig(t)

	if config.Port != 8080 {
		t.Errorf("Port is %d", config.Port)
	}
	if config.CacheTTL != "30m" {
		t.Errorf("CacheTTL is %s", config.CacheTTL)
	}
	if !config.RawErrorsRequireAuth {
		t.Error("RawErrorsRequireAuth not set")
	}
	if config.ErrorPages.NotFound != "/errors/404" {
		t.Errorf("NotFound page is %s", config.ErrorPages.NotFound)
	}
	if len(config.HeaderRules) != 1 || config.HeaderRules[0].Prefix != "/blog" {
		t.Errorf("HeaderRules are %v", config.HeaderRules)
	}
	if config.Layouts["minimal"] == "" {
		t.Error("Layout missing")
	}
	if len(config.Redirects) != 1 || config.Redirects[0].To != "/new" {
		t.Errorf("Redirects are %v", config.Redirects)
	}
}

func TestPageConfigDefaults(t *testing.T) {
	config := loadTestConfig(t)

	home := config.Pages[0].Page()
	if !home.Cacheable {
		t.Error("Pages should default to cacheable")
	}
	if home.State != store.PageStateLive {
		t.Errorf("State is %s, should default to live", home.State)
	}

	volatile := config.Pages[1].Page()
	if volatile.Cacheable {
		t.Error("Explicit cacheable: false was ignored")
	}
	if volatile.State != store.PageStateDraft {
		t.Errorf("State is %s", volatile.State)
	}
}

func TestAttachmentConfigDefaults(t *testing.T) {
	config := loadTestConfig(t)

	att := config.Attachments[0].Attachment()
	if !att.Live {
		t.Error("Attachments should default to live")
	}
	if att.FileType != "application/pdf" {
		t.Errorf("FileType is %s", att.FileType)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}
