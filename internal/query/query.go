// Package query turns free-text search input into backend query strings.
//
// Nothing here escapes backend search operators: text such as "repo:foo" in
// the caller's query reaches GitHub verbatim.
package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dynoinc/sprykersearch/internal/config"
)

// Normalize trims the text and collapses every whitespace run to one space.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Validator restricts organisation filters to the configured allow-list.
type Validator struct {
	allowed []string
}

func NewValidator(cfg config.Search) *Validator {
	return &Validator{allowed: cfg.Organisations()}
}

// Validate keeps the allow-listed members of orgs in caller order. When orgs
// is empty, or nothing in it is allowed, the whole allow-list is returned.
func (v *Validator) Validate(orgs []string) []string {
	var valid []string
	for _, org := range orgs {
		if slices.Contains(v.allowed, org) {
			valid = append(valid, org)
		}
	}

	if len(valid) == 0 {
		return slices.Clone(v.allowed)
	}

	return valid
}

// Composer builds GitHub search query strings.
type Composer struct {
	codeLanguage string
	docsOwner    string
	docsRepo     string
	docsPath     string
}

func NewComposer(cfg config.Search) *Composer {
	return &Composer{
		codeLanguage: cfg.CodeLanguage(),
		docsOwner:    cfg.DocsOwner(),
		docsRepo:     cfg.DocsRepo(),
		docsPath:     cfg.DocsPath(),
	}
}

// Base appends an org: qualifier per organisation to the query.
func (c *Composer) Base(query string, orgs []string) string {
	if len(orgs) == 0 {
		return query
	}

	filters := make([]string, 0, len(orgs))
	for _, org := range orgs {
		filters = append(filters, "org:"+org)
	}

	return query + " " + strings.Join(filters, " ")
}

func (c *Composer) Packages(query string, orgs []string) string {
	return c.Base(query, orgs)
}

func (c *Composer) Code(query string, orgs []string) string {
	return c.Base(query, orgs) + " in:file language:" + c.codeLanguage
}

// Docs scopes a code search to the markdown sources of the documentation
// repository. Organisation filters do not apply.
func (c *Composer) Docs(query string) string {
	return fmt.Sprintf("%s repo:%s/%s path:%s extension:md", query, c.docsOwner, c.docsRepo, c.docsPath)
}

// DocPath rewrites a documentation page URL into the repository path of its
// markdown source: the docs host and the first ".html" are removed and ".md"
// is appended when missing.
func DocPath(pageURL, docsHost string) string {
	path := pageURL
	if docsHost != "" {
		path = strings.TrimPrefix(path, docsHost)
	}
	path = strings.Replace(path, ".html", "", 1)

	if !strings.HasSuffix(path, ".md") {
		path += ".md"
	}

	return path
}
