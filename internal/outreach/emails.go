package outreach

import (
	"strings"
)

// GuessPrompt is shown instead of guesses when an input is missing.
const GuessPrompt = "Please enter first name, last name, and company domain to generate email guesses."

type Guesses struct {
	Emails []string `json:"emails,omitempty"`
	Prompt string   `json:"prompt,omitempty"`
}

// Text is what gets displayed: one address per line, or the prompt.
func (g Guesses) Text() string {
	if len(g.Emails) == 0 {
		return g.Prompt
	}
	return strings.Join(g.Emails, "\n")
}

// GuessEmails builds the ten common corporate address patterns for a person.
func GuessEmails(firstName, lastName, domain string) Guesses {
	first := strings.ToLower(strings.TrimSpace(firstName))
	last := strings.ToLower(strings.TrimSpace(lastName))
	domain = strings.ToLower(strings.TrimSpace(domain))

	if first == "" || last == "" || domain == "" {
		return Guesses{Prompt: GuessPrompt}
	}

	fi := initial(first)
	li := initial(last)
	at := "@" + domain

	return Guesses{Emails: []string{
		first + "." + last + at,
		fi + last + at,
		first + li + at,
		first + at,
		last + at,
		first + "_" + last + at,
		fi + "." + last + at,
		first + last + at,
		last + "." + first + at,
		fi + li + at,
	}}
}

func initial(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
