package outreach

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrDomainRequired = errors.New("domain is required to search for an email")
	ErrUnknownService = errors.New("unknown search service")
)

type Service string

const (
	ServiceCompanySearch Service = "company-search"
	ServiceProfileSearch Service = "profile-search"
	ServiceEmailFinder   Service = "email-finder"
)

// SearchEndpoints are the base URLs of the three external services.
type SearchEndpoints struct {
	WebSearch     string `yaml:"web_search"`
	ProfileSearch string `yaml:"profile_search"`
	EmailFinder   string `yaml:"email_finder"`
}

func DefaultSearchEndpoints() SearchEndpoints {
	return SearchEndpoints{
		WebSearch:     "https://www.google.com/search",
		ProfileSearch: "https://www.linkedin.com/search/results/people/",
		EmailFinder:   "https://hunter.io/email-finder",
	}
}

type SearchInput struct {
	FirstName string
	LastName  string
	Company   string
	Domain    string
}

// BuildSearchURL returns the URL to open for service. For the email finder an
// empty domain yields ErrDomainRequired and the caller must not navigate.
func (e SearchEndpoints) BuildSearchURL(service Service, in SearchInput) (string, error) {
	switch service {
	case ServiceCompanySearch:
		return withQuery(e.WebSearch, url.Values{
			"q": {joinWords(in.Company, "official website")},
		})

	case ServiceProfileSearch:
		return withQuery(e.ProfileSearch, url.Values{
			"keywords": {joinWords(in.FirstName, in.LastName, in.Company)},
		})

	case ServiceEmailFinder:
		if strings.TrimSpace(in.Domain) == "" {
			return "", ErrDomainRequired
		}
		return withQuery(e.EmailFinder, url.Values{
			"full_name": {joinWords(in.FirstName, in.LastName)},
			"domain":    {strings.TrimSpace(in.Domain)},
		})

	default:
		return "", ErrUnknownService
	}
}

func withQuery(base string, q url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func joinWords(parts ...string) string {
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			words = append(words, p)
		}
	}
	return strings.Join(words, " ")
}
