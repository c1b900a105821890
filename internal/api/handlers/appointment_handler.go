package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/markdave123-py/Deskmate/internal/models"
	"github.com/markdave123-py/Deskmate/internal/services"
)

type AppointmentHandler struct {
	appointments *services.AppointmentService
	log          *zap.SugaredLogger
}

func NewAppointmentHandler(appointments *services.AppointmentService, log *zap.SugaredLogger) *AppointmentHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &AppointmentHandler{appointments: appointments, log: log}
}

type appointmentResponse struct {
	Message     string                     `json:"message"`
	Appointment *models.AppointmentRequest `json:"appointment"`
}

func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var in services.AppointmentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	req, err := h.appointments.Book(in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, appointmentResponse{
		Message:     services.Confirmation(req),
		Appointment: req,
	})
}
