package controllers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"coachingsite/internal/delivery/http/helpers"
	"coachingsite/internal/domain"
	"coachingsite/internal/validation"
)

// flexYear accepts a JSON number or a numeric string. Anything else decodes as unset
// so validation can report it with the field's own message.
type flexYear struct {
	value int
	ok    bool
}

func (f *flexYear) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e6 {
			f.value, f.ok = int(v), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			f.value, f.ok = n, true
		}
	}
	return nil
}

// SubscribeRequest is the request body for POST /newsletter.
type SubscribeRequest struct {
	Gender    string   `json:"gender"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	BirthYear flexYear `json:"birthYear" swaggertype:"integer"`
	Zip       string   `json:"zip"`
	Source    string   `json:"source,omitempty"`
}

// Validate implements Validator. Zip and birth year have no presence rule: an absent value
// fails their format rule.
func (s SubscribeRequest) Validate() []string {
	now := time.Now()
	var v validation.Rules
	v.Required("gender", s.Gender, "Bitte wählen Sie eine Anrede")
	v.Required("firstName", s.FirstName, "Bitte geben Sie Ihren Vornamen an")
	v.Required("lastName", s.LastName, "Bitte geben Sie Ihren Nachnamen an")
	v.Required("email", s.Email, msgEmailRequired)

	v.Format("gender", validation.OneOf(strings.TrimSpace(s.Gender), domain.Salutations...), "Ungültige Anrede")
	v.Format("email", validation.Email(s.Email), msgEmailInvalid)
	v.Format("birthYear", s.BirthYear.ok, "Ungültiges Geburtsjahr")
	v.Format("zip", validation.Zip(strings.TrimSpace(s.Zip)), "Ungültige Postleitzahl (5 Ziffern)")

	v.Bound("firstName", validation.MaxLen(s.FirstName, 200), "Der Vorname darf höchstens 200 Zeichen lang sein")
	v.Bound("lastName", validation.MaxLen(s.LastName, 200), "Der Nachname darf höchstens 200 Zeichen lang sein")
	v.Bound("birthYear", validation.BirthYear(s.BirthYear.value, now),
		fmt.Sprintf("Das Geburtsjahr muss zwischen %d und %d liegen", validation.MinBirthYear, validation.MaxBirthYear(now)))
	v.Bound("source", validation.MaxLen(s.Source, 100), "Ungültige Quelle")
	return v.Errors()
}

// EmailRequest is the request body for unsubscribe and delete.
type EmailRequest struct {
	Email string `json:"email"`
}

// Validate implements Validator.
func (e EmailRequest) Validate() []string {
	var v validation.Rules
	v.Required("email", e.Email, msgEmailRequired)
	v.Format("email", validation.Email(e.Email), msgEmailInvalid)
	return v.Errors()
}

// SubscriberListResponse is the response body for GET /newsletter?action=list.
type SubscriberListResponse struct {
	helpers.APIResponse
	Subscribers []*domain.Subscriber `json:"subscribers"`
}

// SubscriberCountResponse is the response body for GET /newsletter?action=count.
type SubscriberCountResponse struct {
	helpers.APIResponse
	domain.SubscriberStats
}

type NewsletterController struct {
	Logger  *slog.Logger
	Service domain.NewsletterService
}

func NewNewsletterController(logger *slog.Logger, svc domain.NewsletterService) *NewsletterController {
	return &NewsletterController{Logger: logger, Service: svc}
}

// Handler returns the /newsletter handler. Admin actions are wrapped with gate.
func (c *NewsletterController) Handler(gate AdminGate) http.Handler {
	return actionRouter{
		"":            {http.MethodPost, c.Subscribe},
		"subscribe":   {http.MethodPost, c.Subscribe},
		"unsubscribe": {http.MethodPost, c.Unsubscribe},
		"list":        {http.MethodGet, gate(c.List)},
		"count":       {http.MethodGet, gate(c.Count)},
		"delete":      {http.MethodPost, gate(c.Delete)},
	}
}

// Subscribe godoc
// @Summary Subscribe to the newsletter
// @Description Creates the subscriber or updates the existing record with the same email.
// @Tags newsletter
// @Accept json
// @Produce json
// @Param subscriber body SubscribeRequest true "Signup form"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "code: bad_request, message: first failed rule"
// @Failure 500 {object} helpers.APIResponse "code: internal_error"
// @Router /newsletter [post]
func (c *NewsletterController) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	sub := &domain.Subscriber{
		Gender:    req.Gender,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		BirthYear: req.BirthYear.value,
		Zip:       req.Zip,
		Source:    req.Source,
	}
	created, err := c.Service.Subscribe(r.Context(), sub)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, helpers.MsgNotFound)
		return
	}
	msg := "Vielen Dank für Ihre Anmeldung zum Newsletter!"
	if !created {
		msg = "Ihre Newsletter-Anmeldung wurde aktualisiert."
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, msg)
}

// Unsubscribe godoc
// @Summary Unsubscribe from the newsletter
// @Description Marks the address unsubscribed. The answer is the same whether or not the address is known.
// @Tags newsletter
// @Accept json
// @Produce json
// @Param action query string true "unsubscribe"
// @Param body body EmailRequest true "Email"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "code: bad_request"
// @Router /newsletter?action=unsubscribe [post]
func (c *NewsletterController) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.Unsubscribe(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, c.Logger, err, helpers.MsgNotFound)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "Sie wurden vom Newsletter abgemeldet.")
}

// List godoc
// @Summary List subscribers
// @Description Returns subscribers sorted by signup time, newest first. q filters by email or name.
// @Tags newsletter
// @Produce json
// @Security BearerAuth
// @Param action query string true "list"
// @Param q query string false "Search term"
// @Success 200 {object} controllers.SubscriberListResponse
// @Failure 401 {object} helpers.APIResponse "code: unauthorized"
// @Router /newsletter?action=list [get]
func (c *NewsletterController) List(w http.ResponseWriter, r *http.Request) {
	subs, err := c.Service.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err, helpers.MsgNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, SubscriberListResponse{APIResponse: helpers.OK(""), Subscribers: subs})
}

// Count godoc
// @Summary Subscriber statistics
// @Description Active subscribers in total and since the start of the current month.
// @Tags newsletter
// @Produce json
// @Security BearerAuth
// @Param action query string true "count"
// @Success 200 {object} controllers.SubscriberCountResponse
// @Failure 401 {object} helpers.APIResponse "code: unauthorized"
// @Router /newsletter?action=count [get]
func (c *NewsletterController) Count(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Service.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err, helpers.MsgNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, SubscriberCountResponse{APIResponse: helpers.OK(""), SubscriberStats: *stats})
}

// Delete godoc
// @Summary Delete a subscriber
// @Tags newsletter
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param action query string true "delete"
// @Param body body EmailRequest true "Email"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "code: not_found"
// @Router /newsletter?action=delete [post]
func (c *NewsletterController) Delete(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.Delete(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, c.Logger, err, "Abonnent nicht gefunden")
		return
	}
	logAdminAction(c.Logger, r, "delete-subscriber", "email", domain.MaskEmail(req.Email))
	helpers.WriteJSONSuccess(w, http.StatusOK, "Abonnent gelöscht")
}
