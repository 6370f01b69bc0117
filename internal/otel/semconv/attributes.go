// Standardized attribute keys for search spans.
// Before adding a new attribute, first check to see if an attribute is already defined
// in the OpenTelemetry spec (https://opentelemetry.io/docs/specs/semconv/)
package semconv

import "go.opentelemetry.io/otel/attribute"

const (
	// Search request attributes
	SearchKindKey          = attribute.Key("search.kind")
	SearchQueryKey         = attribute.Key("search.query")
	SearchOrganisationsKey = attribute.Key("search.organisations")

	// Search result attributes
	SearchResultCountKey   = attribute.Key("search.result_count")
	SearchFailedFetchesKey = attribute.Key("search.failed_fetches")

	// Application-specific attributes
	ForceTraceKey = attribute.Key("force_trace")
)
