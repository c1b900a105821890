package services

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/markdave123-py/Deskmate/internal/core"
	"github.com/markdave123-py/Deskmate/internal/core/dates"
	"github.com/markdave123-py/Deskmate/internal/core/validation"
	"github.com/markdave123-py/Deskmate/internal/models"
)

// AppointmentInput is the raw form as typed by the user.
type AppointmentInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Date  string `json:"date"`
}

type AppointmentService struct {
	validator *validation.Validator
	dates     *dates.Extractor
	log       *zap.SugaredLogger
}

func NewAppointmentService(v *validation.Validator, d *dates.Extractor, log *zap.SugaredLogger) *AppointmentService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &AppointmentService{validator: v, dates: d, log: log}
}

// Book validates the contact, then resolves the date phrase. Nothing is stored.
func (s *AppointmentService) Book(in AppointmentInput) (*models.AppointmentRequest, error) {
	if blank(in.Name) || blank(in.Phone) || blank(in.Email) || blank(in.Date) {
		return nil, core.ErrMissingFields
	}

	contact, err := s.validator.Validate(in.Name, in.Phone, in.Email)
	if err != nil {
		return nil, err
	}

	date, err := s.dates.Extract(in.Date)
	if err != nil {
		return nil, err
	}

	s.log.Infow("appointment confirmed", "date", date)
	return &models.AppointmentRequest{
		Contact: *contact,
		Date:    date,
		Status:  models.AppointmentConfirmed,
	}, nil
}

// Confirmation is the message shown after a successful booking.
func Confirmation(req *models.AppointmentRequest) string {
	return fmt.Sprintf("Appointment successfully booked for %s on %s.", req.Contact.Name, req.Date)
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
