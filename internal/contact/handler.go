// internal/contact/handler.go
//
// Contact form endpoint.
//
// Context
// -------
// POST /api/contact accepts {name, email, message, token}.  The flow:
//
//  1. Decode JSON.  A missing token is refused (400) before anything talks
//     to the CAPTCHA provider.
//  2. Validate fields with go-playground/validator (400 on failure).
//  3. Verify the token.  Rejected → 400, provider failure → 500.
//  4. Store the message.  Failure → 500.
//  5. Notify the admin function.  Failure is logged and counted only.
//
// Success answers {"success": true}; every failure answers {"error": "..."}.
package contact

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/yanizio/cardforge/internal/captcha"
	"github.com/yanizio/cardforge/internal/metrics"
	"github.com/yanizio/cardforge/internal/notify"
	"github.com/yanizio/cardforge/internal/requestinfo"
	"github.com/yanizio/cardforge/internal/respond"
	"github.com/yanizio/cardforge/internal/site"
)

// Store persists messages.  *site.Repository satisfies it.
type Store interface {
	InsertContactMessage(ctx context.Context, m *site.ContactMessage) error
}

// Request is the JSON body.
type Request struct {
	Name    string `json:"name"    validate:"required,max=200"`
	Email   string `json:"email"   validate:"required,email,max=320"`
	Message string `json:"message" validate:"required,max=5000"`
	Token   string `json:"token"`
}

// Handler serves the contact endpoint.
type Handler struct {
	verifier captcha.Verifier
	store    Store
	notifier notify.Notifier
	log      *zap.Logger
	validate *validator.Validate
}

// NewHandler wires dependencies.  A nil notifier disables notifications.
func NewHandler(v captcha.Verifier, s Store, n notify.Notifier, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.L()
	}
	return &Handler{
		verifier: v,
		store:    s,
		notifier: n,
		log:      log,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := respond.Decode(w, r, &req); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)

	if strings.TrimSpace(req.Token) == "" {
		h.fail(w, http.StatusBadRequest, "missing captcha token", "missing_token")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.fail(w, http.StatusBadRequest, fieldMessage(err), "invalid")
		return
	}

	info := requestinfo.FromContext(r.Context())
	if err := h.verifier.Verify(r.Context(), req.Token, info.IP()); err != nil {
		if errors.Is(err, captcha.ErrRejected) {
			h.fail(w, http.StatusBadRequest, "invalid captcha token", "captcha_rejected")
			return
		}
		h.log.Error("captcha verification failed", zap.Error(err))
		h.fail(w, http.StatusInternalServerError, "captcha verification failed", "captcha_error")
		return
	}

	msg := &site.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
		IP:      info.IP(),
	}
	if info != nil {
		msg.UserAgent = truncate(info.UA.Raw, 512)
		msg.Browser = info.UA.Browser
		msg.Country = info.Geo.CountryISO
	}
	if err := h.store.InsertContactMessage(r.Context(), msg); err != nil {
		h.log.Error("contact message store failed", zap.Error(err))
		h.fail(w, http.StatusInternalServerError, "failed to save message", "store_error")
		return
	}

	h.notifyAdmin(r.Context(), msg)

	metrics.ContactSubmissions.WithLabelValues("ok").Inc()
	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// notifyAdmin is best-effort.
func (h *Handler) notifyAdmin(ctx context.Context, msg *site.ContactMessage) {
	if h.notifier == nil {
		return
	}
	err := h.notifier.Notify(ctx, notify.Event{
		Type: "contact_message",
		Payload: map[string]any{
			"id":      msg.ID,
			"name":    msg.Name,
			"email":   msg.Email,
			"message": msg.Message,
		},
	})
	if err != nil {
		metrics.NotifyFailures.Inc()
		h.log.Warn("admin notification failed", zap.Uint64("message_id", msg.ID), zap.Error(err))
	}
}

func (h *Handler) fail(w http.ResponseWriter, status int, msg, outcome string) {
	metrics.ContactSubmissions.WithLabelValues(outcome).Inc()
	respond.Error(w, status, msg)
}

// fieldMessage turns the first validator error into a short sentence.
func fieldMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid input"
	}
	fe := ve[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "max":
		return field + " is too long"
	}
	return field + " is invalid"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
