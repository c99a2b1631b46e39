package outreach

import (
	"bytes"
	"strings"
	"text/template"
)

// DraftPrompt is shown instead of a draft when the first name is missing.
const DraftPrompt = "Please enter a first name to draft an email."

const coldEmailTemplate = `Subject: Quick question about {{.Company}}

Hi {{.FirstName}},

I came across {{.Company}} and was impressed by what your team is building. We help companies like yours with [Your Service], which usually means [Value Proposition].

Would you be open to a quick 15-minute call next week to see if it could be a fit?

Best regards,
[Your Name]`

var coldEmail = template.Must(template.New("cold_email").Parse(coldEmailTemplate))

type draftData struct {
	FirstName string
	Company   string
}

// DraftColdEmail fills the static outreach template. The bracketed tokens are
// left for the sender to replace by hand.
func DraftColdEmail(firstName, company string) string {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return DraftPrompt
	}

	var body bytes.Buffer
	// Only string fields; Execute cannot fail here.
	_ = coldEmail.Execute(&body, draftData{
		FirstName: firstName,
		Company:   strings.TrimSpace(company),
	})
	return body.String()
}
