package contentgate

import (
	"os"

	headerrules "github.com/content-gate/content-gate/pkg/header-rules"
	"github.com/content-gate/content-gate/store"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML site configuration consumed by the command
// line frontend: serving options plus the content to seed the stores
// with.
type FileConfig struct {
	Port                 int                `yaml:"port"`
	DB                   string             `yaml:"db"`
	CacheTTL             string             `yaml:"cacheTTL"`
	RefreshInterval      string             `yaml:"refreshInterval"`
	RawErrorsRequireAuth bool               `yaml:"rawErrorsRequireAuth"`
	ErrorPages           ErrorPagesConfig   `yaml:"errorPages"`
	HeaderRules          headerrules.Rules  `yaml:"headerRules"`
	Layouts              map[string]string  `yaml:"layouts"`
	Pages                []PageConfig       `yaml:"pages"`
	Attachments          []AttachmentConfig `yaml:"attachments"`
	Redirects            []RedirectConfig   `yaml:"redirects"`
}

type ErrorPagesConfig struct {
	NotFound     string `yaml:"notFound"`
	AccessDenied string `yaml:"accessDenied"`
	ServerError  string `yaml:"serverError"`
}

type PageConfig struct {
	Path      string `yaml:"path"`
	Name      string `yaml:"name"`
	Layout    string `yaml:"layout"`
	Content   string `yaml:"content"`
	Cacheable *bool  `yaml:"cacheable"`
	Archived  bool   `yaml:"archived"`
	State     string `yaml:"state"`
}

// Page converts the config entry to a store page.
// Pages default to cacheable and live.
func (pc PageConfig) Page() store.Page {
	cacheable := true
	if pc.Cacheable != nil {
		cacheable = *pc.Cacheable
	}
	state := store.PageState(pc.State)
	if state == "" {
		state = store.PageStateLive
	}
	return store.Page{
		Path:      pc.Path,
		Name:      pc.Name,
		Layout:    pc.Layout,
		Content:   pc.Content,
		Cacheable: cacheable,
		Archived:  pc.Archived,
		State:     state,
	}
}

type AttachmentConfig struct {
	Path         string `yaml:"path"`
	FileName     string `yaml:"fileName"`
	FileType     string `yaml:"fileType"`
	FileLocation string `yaml:"fileLocation"`
	Live         *bool  `yaml:"live"`
}

// Attachment converts the config entry to a store attachment.
// Attachments default to live.
func (ac AttachmentConfig) Attachment() store.Attachment {
	live := true
	if ac.Live != nil {
		live = *ac.Live
	}
	return store.Attachment{
		Path:         ac.Path,
		FileName:     ac.FileName,
		FileType:     ac.FileType,
		FileLocation: ac.FileLocation,
		Live:         live,
	}
}

type RedirectConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

func LoadConfig(filename string) (FileConfig, error) {
	var config FileConfig
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(configBytes, &config)
	return config, err
}
