package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Search holds the fixed search constants. The zero value is not useful, use
// Default or Load.
type Search struct {
	organisations []string

	codeLanguage     string
	docsHost         string
	docsOwner        string
	docsRepo         string
	docsPath         string
	packageLimit     int
	hitsPerPage      int
	fetchConcurrency int
}

// profile is the on-disk shape of a search profile.
type profile struct {
	Organisations    []string `yaml:"organisations"     validate:"omitempty,len=5,unique,dive,required"`
	CodeLanguage     string   `yaml:"code_language"     validate:"omitempty,alphanum"`
	DocsHost         string   `yaml:"docs_host"         validate:"omitempty,url"`
	DocsOwner        string   `yaml:"docs_owner"`
	DocsRepo         string   `yaml:"docs_repo"`
	DocsPath         string   `yaml:"docs_path"`
	PackageLimit     int      `yaml:"package_limit"     validate:"gte=0,lte=100"`
	HitsPerPage      int      `yaml:"hits_per_page"     validate:"gte=0,lte=1000"`
	FetchConcurrency int      `yaml:"fetch_concurrency" validate:"gte=0"`
}

var defaultOrganisations = []string{
	"spryker",
	"spryker-eco",
	"spryker-sdk",
	"spryker-shop",
	"spryker-community",
}

func Default() Search {
	return Search{
		organisations:    slices.Clone(defaultOrganisations),
		codeLanguage:     "php",
		docsHost:         "https://docs.spryker.com",
		docsOwner:        "spryker",
		docsRepo:         "spryker-docs",
		docsPath:         "docs",
		packageLimit:     30,
		hitsPerPage:      15,
		fetchConcurrency: 0,
	}
}

// Load reads a YAML search profile on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (Search, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Search{}, fmt.Errorf("read config: %w", err)
	}

	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Search{}, fmt.Errorf("parse YAML: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return Search{}, fmt.Errorf("validation error: %w", err)
	}

	return s.apply(p)
}

func (s Search) apply(p profile) (Search, error) {
	if len(p.Organisations) > 0 {
		s.organisations = slices.Clone(p.Organisations)
	}
	if p.CodeLanguage != "" {
		s.codeLanguage = p.CodeLanguage
	}
	if p.DocsHost != "" {
		s.docsHost = p.DocsHost
	}
	if p.DocsOwner != "" {
		s.docsOwner = p.DocsOwner
	}
	if p.DocsRepo != "" {
		s.docsRepo = p.DocsRepo
	}
	if p.DocsPath != "" {
		s.docsPath = p.DocsPath
	}
	if p.PackageLimit > 0 {
		s.packageLimit = p.PackageLimit
	}
	if p.HitsPerPage > 0 {
		s.hitsPerPage = p.HitsPerPage
	}
	s.fetchConcurrency = p.FetchConcurrency

	if len(s.organisations) == 0 {
		return Search{}, errors.New("validation error: organisations must not be empty")
	}

	return s, nil
}

// Organisations returns the allow-list in its configured order.
func (s Search) Organisations() []string { return slices.Clone(s.organisations) }

func (s Search) CodeLanguage() string  { return s.codeLanguage }
func (s Search) DocsHost() string      { return s.docsHost }
func (s Search) DocsOwner() string     { return s.docsOwner }
func (s Search) DocsRepo() string      { return s.docsRepo }
func (s Search) DocsPath() string      { return s.docsPath }
func (s Search) PackageLimit() int     { return s.packageLimit }
func (s Search) HitsPerPage() int      { return s.hitsPerPage }
func (s Search) FetchConcurrency() int { return s.fetchConcurrency }
