package controllers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"coachingsite/internal/delivery/http/helpers"
	"coachingsite/internal/domain"
	"coachingsite/internal/validation"
)

// Slot duration bounds in minutes, and the most occurrences one create-slot call may add.
const (
	minSlotDuration     = 15
	maxSlotDuration     = 480
	defaultSlotDuration = 60
	maxRepeatCount      = 52
)

const msgSlotNotFound = "Termin nicht gefunden"

// AdminLoginRequest is the request body for POST /booking?action=admin-login.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// Validate implements Validator.
func (a AdminLoginRequest) Validate() []string {
	var v validation.Rules
	v.Required("password", a.Password, "Bitte geben Sie das Passwort ein")
	return v.Errors()
}

// AdminLoginResponse is the response body for a successful admin login.
type AdminLoginResponse struct {
	helpers.APIResponse
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// BookRequest is the request body for POST /booking?action=book.
type BookRequest struct {
	SlotID      string `json:"slotId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Message     string `json:"message,omitempty"`
	ContactType string `json:"contactType"`
}

// Validate implements Validator.
func (b BookRequest) Validate() []string {
	var v validation.Rules
	v.Required("slotId", b.SlotID, "Bitte wählen Sie einen Termin")
	v.Required("name", b.Name, "Bitte geben Sie Ihren Namen an")
	v.Required("email", b.Email, msgEmailRequired)
	v.Required("phone", b.Phone, "Bitte geben Sie Ihre Telefonnummer an")
	v.Required("contactType", b.ContactType, "Bitte wählen Sie Zoom oder Telefon")

	v.Format("email", validation.Email(b.Email), msgEmailInvalid)
	v.Format("phone", validation.Phone(b.Phone), "Ungültige Telefonnummer")
	v.Format("contactType", validation.OneOf(b.ContactType, domain.ContactTypeZoom, domain.ContactTypePhone), "Ungültige Kontaktart")

	v.Bound("name", validation.MaxLen(b.Name, 200), "Der Name darf höchstens 200 Zeichen lang sein")
	v.Bound("message", validation.MaxLen(b.Message, 5000), "Die Nachricht darf höchstens 5000 Zeichen lang sein")
	return v.Errors()
}

// CreateSlotRequest is the request body for POST /booking?action=create-slot.
// Duration defaults to 60 minutes. RepeatCount is the total number of slots for daily or weekly repeats.
type CreateSlotRequest struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Duration    int    `json:"duration,omitempty"`
	Repeat      string `json:"repeat,omitempty"`
	RepeatCount int    `json:"repeatCount,omitempty"`
}

// Validate implements Validator.
func (c CreateSlotRequest) Validate() []string {
	var v validation.Rules
	v.Required("date", c.Date, "Bitte geben Sie ein Datum an")
	v.Required("time", c.Time, "Bitte geben Sie eine Uhrzeit an")

	v.Format("date", validation.Date(c.Date), "Ungültiges Datum (JJJJ-MM-TT)")
	v.Format("time", validation.Clock(c.Time), "Ungültige Uhrzeit (HH:MM)")
	v.Format("repeat", validation.OneOf(c.Repeat, "", domain.RepeatNone, domain.RepeatDaily, domain.RepeatWeekly), "Ungültige Wiederholung")

	v.Bound("duration", c.Duration == 0 || (c.Duration >= minSlotDuration && c.Duration <= maxSlotDuration),
		fmt.Sprintf("Die Dauer muss zwischen %d und %d Minuten liegen", minSlotDuration, maxSlotDuration))
	if c.Repeat == domain.RepeatDaily || c.Repeat == domain.RepeatWeekly {
		v.Bound("repeatCount", c.RepeatCount >= 1 && c.RepeatCount <= maxRepeatCount,
			fmt.Sprintf("Die Anzahl der Termine muss zwischen 1 und %d liegen", maxRepeatCount))
	}
	return v.Errors()
}

// SlotIDRequest is the request body for delete-slot, confirm-slot and decline-slot.
type SlotIDRequest struct {
	ID string `json:"id"`
}

// Validate implements Validator.
func (s SlotIDRequest) Validate() []string {
	var v validation.Rules
	v.Required("id", s.ID, "Termin-ID fehlt")
	return v.Errors()
}

// SlotListResponse is the response body for slot listings and create-slot.
type SlotListResponse struct {
	helpers.APIResponse
	Slots []*domain.TimeSlot `json:"slots"`
}

// SlotResponse is the response body for confirm-slot and decline-slot.
type SlotResponse struct {
	helpers.APIResponse
	Slot *domain.TimeSlot `json:"slot"`
}

type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
	Auth    domain.AdminAuthService
}

func NewBookingController(logger *slog.Logger, svc domain.BookingService, auth domain.AdminAuthService) *BookingController {
	return &BookingController{Logger: logger, Service: svc, Auth: auth}
}

// Handler returns the /booking handler. Admin actions are wrapped with gate.
func (c *BookingController) Handler(gate AdminGate) http.Handler {
	return actionRouter{
		"admin-login":  {http.MethodPost, c.AdminLogin},
		"slots":        {http.MethodGet, c.OpenSlots},
		"book":         {http.MethodPost, c.Book},
		"admin-slots":  {http.MethodGet, gate(c.AdminSlots)},
		"create-slot":  {http.MethodPost, gate(c.CreateSlot)},
		"delete-slot":  {http.MethodPost, gate(c.DeleteSlot)},
		"confirm-slot": {http.MethodPost, gate(c.ConfirmSlot)},
		"decline-slot": {http.MethodPost, gate(c.DeclineSlot)},
	}
}

// AdminLogin godoc
// @Summary Admin login
// @Description Exchanges the admin password for a bearer token with expiry.
// @Tags booking
// @Accept json
// @Produce json
// @Param action query string true "admin-login"
// @Param body body AdminLoginRequest true "Password"
// @Success 200 {object} controllers.AdminLoginResponse
// @Failure 401 {object} helpers.APIResponse "code: unauthorized"
// @Router /booking?action=admin-login [post]
func (c *BookingController) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, expiresAt, err := c.Auth.Login(r.Context(), req.Password)
	if err != nil {
		c.Logger.WarnContext(r.Context(), "admin login failed", "err", err)
		writeServiceError(w, r, c.Logger, err, helpers.MsgNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, AdminLoginResponse{APIResponse: helpers.OK(""), Token: token, ExpiresAt: expiresAt})
}

// OpenSlots godoc
// @Summary List bookable slots
// @Description Available slots from now on. Booking details are never included.
// @Tags booking
// @Produce json
// @Param action query string true "slots"
// @Success 200 {object} controllers.SlotListResponse
// @Router /booking?action=slots [get]
func (c *BookingController) OpenSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := c.Service.ListOpenSlots(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err, msgSlotNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, SlotListResponse{APIResponse: helpers.OK(""), Slots: slots})
}

// Book godoc
// @Summary Request an appointment
// @Description Claims an available slot. The slot becomes pending until the coach confirms or declines it.
// @Tags booking
// @Accept json
// @Produce json
// @Param action query string true "book"
// @Param body body BookRequest true "Booking"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "code: bad_request"
// @Failure 404 {object} helpers.APIResponse "code: not_found"
// @Failure 409 {object} helpers.APIResponse "code: conflict"
// @Router /booking?action=book [post]
func (c *BookingController) Book(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	booking := &domain.Booking{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Message:     req.Message,
		ContactType: req.ContactType,
	}
	if _, err := c.Service.Book(r.Context(), strings.TrimSpace(req.SlotID), booking); err != nil {
		writeServiceError(w, r, c.Logger, err, msgSlotNotFound)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, "Vielen Dank! Ihre Terminanfrage wurde gesendet. Sie erhalten in Kürze eine Bestätigung.")
}

// AdminSlots godoc
// @Summary List all slots
// @Description All slots with booking details, ordered by date and time.
// @Tags booking
// @Produce json
// @Security BearerAuth
// @Param action query string true "admin-slots"
// @Success 200 {object} controllers.SlotListResponse
// @Failure 401 {object} helpers.APIResponse "code: unauthorized"
// @Router /booking?action=admin-slots [get]
func (c *BookingController) AdminSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := c.Service.ListSlots(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err, msgSlotNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, SlotListResponse{APIResponse: helpers.OK(""), Slots: slots})
}

// CreateSlot godoc
// @Summary Create slots
// @Description Creates one slot, or a daily or weekly series. Starts that already exist are skipped.
// @Tags booking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param action query string true "create-slot"
// @Param body body CreateSlotRequest true "Slot series"
// @Success 200 {object} controllers.SlotListResponse "slots contains the created slots"
// @Failure 400 {object} helpers.APIResponse "code: bad_request"
// @Failure 401 {object} helpers.APIResponse "code: unauthorized"
// @Router /booking?action=create-slot [post]
func (c *BookingController) CreateSlot(w http.ResponseWriter, r *http.Request) {
	var req CreateSlotRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	series := domain.SlotSeries{
		Date:     req.Date,
		Time:     req.Time,
		Duration: req.Duration,
		Repeat:   req.Repeat,
		Count:    req.RepeatCount,
	}
	if series.Duration == 0 {
		series.Duration = defaultSlotDuration
	}
	created, err := c.Service.CreateSlots(r.Context(), series)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, msgSlotNotFound)
		return
	}
	logAdminAction(c.Logger, r, "create-slot", "date", series.Date, "time", series.Time, "created", len(created))
	msg := fmt.Sprintf("%d Termin(e) erstellt", len(created))
	if len(created) == 0 {
		msg = "Alle Termine existieren bereits"
	}
	helpers.WriteJSON(w, http.StatusOK, SlotListResponse{APIResponse: helpers.OK(msg), Slots: created})
}

// DeleteSlot godoc
// @Summary Delete a slot
// @Description Only available slots can be deleted.
// @Tags booking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param action query string true "delete-slot"
// @Param body body SlotIDRequest true "Slot ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "code: not_found"
// @Failure 409 {object} helpers.APIResponse "code: conflict"
// @Router /booking?action=delete-slot [post]
func (c *BookingController) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	var req SlotIDRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.DeleteSlot(r.Context(), strings.TrimSpace(req.ID)); err != nil {
		writeServiceError(w, r, c.Logger, err, msgSlotNotFound)
		return
	}
	logAdminAction(c.Logger, r, "delete-slot", "slot_id", req.ID)
	helpers.WriteJSONSuccess(w, http.StatusOK, "Termin gelöscht")
}

// ConfirmSlot godoc
// @Summary Confirm a booking request
// @Tags booking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param action query string true "confirm-slot"
// @Param body body SlotIDRequest true "Slot ID"
// @Success 200 {object} controllers.SlotResponse
// @Failure 404 {object} helpers.APIResponse "code: not_found"
// @Failure 409 {object} helpers.APIResponse "code: conflict"
// @Router /booking?action=confirm-slot [post]
func (c *BookingController) ConfirmSlot(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, c.Service.Confirm, "Termin bestätigt")
}

// DeclineSlot godoc
// @Summary Decline a booking request
// @Tags booking
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param action query string true "decline-slot"
// @Param body body SlotIDRequest true "Slot ID"
// @Success 200 {object} controllers.SlotResponse
// @Failure 404 {object} helpers.APIResponse "code: not_found"
// @Failure 409 {object} helpers.APIResponse "code: conflict"
// @Router /booking?action=decline-slot [post]
func (c *BookingController) DeclineSlot(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, c.Service.Decline, "Termin abgelehnt")
}

func (c *BookingController) decide(w http.ResponseWriter, r *http.Request, transition func(ctx context.Context, id string) (*domain.TimeSlot, error), msg string) {
	var req SlotIDRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	slot, err := transition(r.Context(), strings.TrimSpace(req.ID))
	if err != nil {
		writeServiceError(w, r, c.Logger, err, msgSlotNotFound)
		return
	}
	logAdminAction(c.Logger, r, "decide-slot", "slot_id", slot.ID, "status", slot.Status)
	helpers.WriteJSON(w, http.StatusOK, SlotResponse{APIResponse: helpers.OK(msg), Slot: slot})
}
