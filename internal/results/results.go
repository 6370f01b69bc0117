// Package results holds the raw backend records that flow from the search
// backends to the formatters.
package results

type Repository struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"html_url"`
}

type CodeMatch struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	URL        string `json:"html_url"`
	Repository string `json:"repository"` // owner/repo
}

type RepositoryPage struct {
	Items      []Repository
	TotalCount int
}

type CodePage struct {
	Items      []CodeMatch
	TotalCount int
}

// DocHit is a documentation index hit before its content is fetched.
type DocHit struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// DocResult is the outcome of fetching one DocHit. Exactly one of Text and
// Error is set.
type DocResult struct {
	URL   string  `json:"url"`
	Text  *string `json:"text"`
	Error string  `json:"error,omitempty"`
}

func Fetched(url, text string) DocResult {
	return DocResult{URL: url, Text: &text}
}

func Failed(url string, err error) DocResult {
	return DocResult{URL: url, Error: err.Error()}
}

func (r DocResult) OK() bool { return r.Text != nil }
