package github_integration

import (
	"context"
	"strings"

	"github.com/dynoinc/sprykersearch/internal/config"
	"github.com/dynoinc/sprykersearch/internal/query"
	"github.com/dynoinc/sprykersearch/internal/results"
)

// DocsIndex finds documentation pages with a code search over the markdown
// sources of the documentation repository. It stands in for the hosted
// full-text index when that is not available.
type DocsIndex struct {
	backend     *Backend
	composer    *query.Composer
	docsHost    string
	hitsPerPage int
}

func NewDocsIndex(backend *Backend, cfg config.Search) *DocsIndex {
	return &DocsIndex{
		backend:     backend,
		composer:    query.NewComposer(cfg),
		docsHost:    strings.TrimSuffix(cfg.DocsHost(), "/"),
		hitsPerPage: cfg.HitsPerPage(),
	}
}

// SearchDocs returns page URLs on the docs host, so that rewriting a hit back
// to its source path yields the file that matched.
func (d *DocsIndex) SearchDocs(ctx context.Context, q string) ([]results.DocHit, error) {
	page, err := d.backend.SearchCode(ctx, d.composer.Docs(q))
	if err != nil {
		return nil, err
	}

	items := page.Items
	if d.hitsPerPage > 0 && len(items) > d.hitsPerPage {
		items = items[:d.hitsPerPage]
	}

	hits := make([]results.DocHit, 0, len(items))
	for _, item := range items {
		hits = append(hits, results.DocHit{
			URL:   d.docsHost + "/" + strings.TrimSuffix(item.Path, ".md") + ".html",
			Title: item.Name,
		})
	}

	return hits, nil
}
