// Package format renders search results as plain text for tool responses.
package format

import (
	"fmt"
	"strings"

	"github.com/dynoinc/sprykersearch/internal/results"
)

const (
	NoRepositories  = "No repositories found matching your search criteria."
	NoCodeMatches   = "No code matches found for your search criteria."
	NoDocumentation = "No documentation found matching your search criteria."

	noDescription = "No description available"
)

func Repositories(repos []results.Repository, orgs []string) string {
	if len(repos) == 0 {
		return NoRepositories
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d repositories:\n\n", len(repos))
	for i, repo := range repos {
		description := repo.Description
		if description == "" {
			description = noDescription
		}

		fmt.Fprintf(&b, "%d. %s\n", i+1, repo.Name)
		fmt.Fprintf(&b, "   Description: %s\n", description)
		fmt.Fprintf(&b, "   URL: %s\n\n", repo.URL)
	}
	writeOrganisations(&b, orgs)

	return b.String()
}

func Code(matches []results.CodeMatch, orgs []string) string {
	if len(matches) == 0 {
		return NoCodeMatches
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d code matches:\n\n", len(matches))
	for i, m := range matches {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, m.Name, m.Repository)
		fmt.Fprintf(&b, "   Path: %s\n", m.Path)
		fmt.Fprintf(&b, "   URL: %s\n\n", m.URL)
	}
	writeOrganisations(&b, orgs)

	return b.String()
}

// Docs renders fetched documentation pages. Entries that failed to fetch are
// rendered with their error instead of content.
func Docs(docs []results.DocResult) string {
	if len(docs) == 0 {
		return NoDocumentation
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d documentation pages:\n\n", len(docs))
	for i, doc := range docs {
		fmt.Fprintf(&b, "%d. URL: %s\n", i+1, doc.URL)
		if doc.OK() {
			fmt.Fprintf(&b, "   Content:\n%s\n\n", *doc.Text)
		} else {
			fmt.Fprintf(&b, "   Error: %s\n\n", doc.Error)
		}
	}

	return strings.TrimSuffix(b.String(), "\n\n")
}

func writeOrganisations(b *strings.Builder, orgs []string) {
	fmt.Fprintf(b, "Search performed across organizations: %s", strings.Join(orgs, ", "))
}
