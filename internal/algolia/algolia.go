// Package algolia searches the hosted documentation full-text index.
package algolia

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"

	"github.com/dynoinc/sprykersearch/internal/results"
)

// Config defaults to the public, search-only credentials of the Spryker
// documentation index. The unprefixed SPRYKER_ALGOLIA_* variables are
// honoured as well.
type Config struct {
	AppID     string `envconfig:"SPRYKER_ALGOLIA_APP_ID" default:"SF7W0R2XNG"`
	APIKey    string `envconfig:"SPRYKER_ALGOLIA_API_KEY" default:"8f2c94685deea955c12e82e73f333f4a"`
	IndexName string `envconfig:"SPRYKER_ALGOLIA_INDEX_NAME" default:"spryker_full_content"`
}

type hit struct {
	Title string `json:"title"`
	URL   string `json:"url_without_anchor"`
}

type Index struct {
	index       *search.Index
	hitsPerPage int
}

func New(cfg Config, hitsPerPage int) *Index {
	return newIndex(search.NewClient(cfg.AppID, cfg.APIKey), cfg.IndexName, hitsPerPage)
}

func newIndex(client *search.Client, indexName string, hitsPerPage int) *Index {
	return &Index{
		index:       client.InitIndex(indexName),
		hitsPerPage: hitsPerPage,
	}
}

func (i *Index) SearchDocs(ctx context.Context, query string) ([]results.DocHit, error) {
	start := time.Now()
	res, err := i.index.Search(query,
		opt.HitsPerPage(i.hitsPerPage),
		opt.GetRankingInfo(true),
		ctx,
	)
	slog.DebugContext(ctx, "Algolia: search", "query", query, "duration", time.Since(start))
	if err != nil {
		slog.ErrorContext(ctx, "Algolia search error", "error", err)
		return nil, fmt.Errorf("algolia search: %w", err)
	}

	return toDocHits(res)
}

func toDocHits(res search.QueryRes) ([]results.DocHit, error) {
	var hits []hit
	if err := res.UnmarshalHits(&hits); err != nil {
		return nil, fmt.Errorf("decoding algolia hits: %w", err)
	}

	docs := make([]results.DocHit, 0, len(hits))
	for _, h := range hits {
		docs = append(docs, results.DocHit{URL: h.URL, Title: h.Title})
	}

	return docs, nil
}
