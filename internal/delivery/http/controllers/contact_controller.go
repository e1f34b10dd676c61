package controllers

import (
	"log/slog"
	"net/http"

	"coachingsite/internal/delivery/http/helpers"
	"coachingsite/internal/domain"
	"coachingsite/internal/validation"
)

// ContactRequest is the request body for POST /contact.
type ContactRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Message         string `json:"message"`
	Situation       string `json:"situation,omitempty"`
	Goal            string `json:"goal,omitempty"`
	SelectedPackage string `json:"selectedPackage,omitempty"`
}

// Validate implements Validator.
func (c ContactRequest) Validate() []string {
	var v validation.Rules
	v.Required("name", c.Name, "Bitte geben Sie Ihren Namen an")
	v.Required("email", c.Email, msgEmailRequired)
	v.Required("message", c.Message, "Bitte geben Sie eine Nachricht ein")

	v.Format("email", validation.Email(c.Email), msgEmailInvalid)

	v.Bound("name", validation.MaxLen(c.Name, 200), "Der Name darf höchstens 200 Zeichen lang sein")
	v.Bound("message", validation.MaxLen(c.Message, 5000), "Die Nachricht darf höchstens 5000 Zeichen lang sein")
	v.Bound("situation", validation.MaxLen(c.Situation, 1000), "Die Beschreibung Ihrer Situation darf höchstens 1000 Zeichen lang sein")
	v.Bound("goal", validation.MaxLen(c.Goal, 1000), "Die Beschreibung Ihres Ziels darf höchstens 1000 Zeichen lang sein")
	v.Bound("selectedPackage", validation.MaxLen(c.SelectedPackage, 200), "Ungültiges Paket")
	return v.Errors()
}

// ContactListResponse is the response body for GET /contact?action=list.
type ContactListResponse struct {
	helpers.APIResponse
	Entries []*domain.ContactEntry `json:"entries"`
}

type ContactController struct {
	Logger  *slog.Logger
	Service domain.ContactService
}

func NewContactController(logger *slog.Logger, svc domain.ContactService) *ContactController {
	return &ContactController{Logger: logger, Service: svc}
}

// Handler returns the /contact handler. Admin actions are wrapped with gate.
func (c *ContactController) Handler(gate AdminGate) http.Handler {
	return actionRouter{
		"":     {http.MethodPost, c.Submit},
		"list": {http.MethodGet, gate(c.List)},
	}
}

// Submit godoc
// @Summary Submit the contact form
// @Description Stores the message and notifies the coach. The visitor receives an automatic reply.
// @Tags contact
// @Accept json
// @Produce json
// @Param contact body ContactRequest true "Contact form"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "code: bad_request, message: first failed rule"
// @Failure 429 {object} helpers.APIResponse "code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "code: internal_error"
// @Router /contact [post]
func (c *ContactController) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	entry := &domain.ContactEntry{
		Name:            req.Name,
		Email:           req.Email,
		Message:         req.Message,
		Situation:       req.Situation,
		Goal:            req.Goal,
		SelectedPackage: req.SelectedPackage,
	}
	if err := c.Service.Submit(r.Context(), entry); err != nil {
		writeServiceError(w, r, c.Logger, err, helpers.MsgNotFound)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "Vielen Dank für Ihre Nachricht! Wir melden uns in Kürze bei Ihnen.")
}

// List godoc
// @Summary List contact entries
// @Description Returns all contact form submissions, newest first.
// @Tags contact
// @Produce json
// @Security BearerAuth
// @Param action query string true "list"
// @Success 200 {object} controllers.ContactListResponse
// @Failure 401 {object} helpers.APIResponse "code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "code: internal_error"
// @Router /contact?action=list [get]
func (c *ContactController) List(w http.ResponseWriter, r *http.Request) {
	entries, err := c.Service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err, helpers.MsgNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ContactListResponse{APIResponse: helpers.OK(""), Entries: entries})
}
