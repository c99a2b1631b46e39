package outreach

import (
	"errors"
	"strings"

	"github.com/xavierca1/prospector/internal/entity"
)

const (
	CSVFilename    = "prospects.csv"
	CSVContentType = "text/csv;charset=utf-8;"
)

var ErrNoData = errors.New("no prospects to export")

var csvHeader = []string{
	"First Name", "Last Name", "Company", "Domain", "Email", "Title", "Status", "Date Added",
}

// BuildCSV renders prospects in list order. Every value is wrapped in double
// quotes as-is: embedded quotes, commas and newlines are not escaped.
func BuildCSV(prospects []entity.Prospect) (string, error) {
	if len(prospects) == 0 {
		return "", ErrNoData
	}

	lines := make([]string, 0, len(prospects)+1)
	lines = append(lines, strings.Join(csvHeader, ","))

	for _, p := range prospects {
		lines = append(lines, quoteRow(
			p.FirstName,
			p.LastName,
			p.Company,
			p.Domain,
			p.Email,
			p.Title,
			string(p.Status),
			p.DateAdded,
		))
	}

	return strings.Join(lines, "\n"), nil
}

func quoteRow(values ...string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + v + `"`
	}
	return strings.Join(quoted, ",")
}
