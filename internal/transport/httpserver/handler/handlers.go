package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"golang.org/x/text/language"

	"agency-budget-go/internal/domain/autosave"
	projectdomain "agency-budget-go/internal/domain/project"
	"agency-budget-go/internal/domain/realtime"
	"agency-budget-go/internal/moneyfmt"
	"agency-budget-go/pkg/logger"
)

type Handlers struct {
	Projects *projectdomain.Service

	saver    *autosave.Saver
	hub      *realtime.Hub
	locale   language.Tag
	validate *validator.Validate
	upgrader websocket.Upgrader
	log      logger.Logger
}

func New(projects *projectdomain.Service, saver *autosave.Saver, hub *realtime.Hub, locale string, allowedOrigins []string, log logger.Logger) *Handlers {
	return &Handlers{
		Projects: projects,
		saver:    saver,
		hub:      hub,
		locale:   moneyfmt.Locale(locale),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		upgrader: newUpgrader(allowedOrigins),
		log:      log,
	}
}

type healthResponse struct {
	Status      string          `json:"status"`
	Autosave    autosave.Status `json:"autosave"`
	Subscribers int             `json:"subscribers"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{Status: "ok"}
	if h.saver != nil {
		response.Autosave = h.saver.Status()
	}
	if h.hub != nil {
		response.Subscribers = h.hub.SubscriberCount()
	}
	writeJSON(w, http.StatusOK, response)
}
