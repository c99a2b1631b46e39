package handlers

import (
	"errors"
	"net/http"

	"github.com/xavierca1/prospector/internal/infra/http/middleware"
	"github.com/xavierca1/prospector/internal/outreach"
)

// OutreachHandler serves the derived text: search URLs, email guesses and the
// cold email draft. Nothing here touches the prospect list.
type OutreachHandler struct {
	Endpoints outreach.SearchEndpoints
}

func NewOutreachHandler(endpoints outreach.SearchEndpoints) *OutreachHandler {
	return &OutreachHandler{Endpoints: endpoints}
}

// SearchURL (GET /search-url?service=...)
func (h *OutreachHandler) SearchURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	service := outreach.Service(q.Get("service"))

	u, err := h.Endpoints.BuildSearchURL(service, outreach.SearchInput{
		FirstName: q.Get("first_name"),
		LastName:  q.Get("last_name"),
		Company:   q.Get("company"),
		Domain:    q.Get("domain"),
	})
	switch {
	case errors.Is(err, outreach.ErrDomainRequired):
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_DOMAIN", "Please enter the company domain first.")
		return
	case errors.Is(err, outreach.ErrUnknownService):
		writeErrorResponse(w, http.StatusBadRequest, "UNKNOWN_SERVICE", "service must be company-search, profile-search or email-finder")
		return
	case err != nil:
		writeErrorResponse(w, http.StatusInternalServerError, "INVALID_ENDPOINT", err.Error())
		return
	}

	middleware.RecordSearchURL(string(service))
	writeJSON(w, http.StatusOK, map[string]string{"service": string(service), "url": u})
}

// EmailGuesses (GET /email-guesses)
func (h *OutreachHandler) EmailGuesses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, outreach.GuessEmails(q.Get("first_name"), q.Get("last_name"), q.Get("domain")))
}

// ColdEmail (GET /cold-email)
func (h *OutreachHandler) ColdEmail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, map[string]string{
		"draft": outreach.DraftColdEmail(q.Get("first_name"), q.Get("company")),
	})
}
