package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/harentsoaR/diagnosia-api/internal/metrics"
	"github.com/harentsoaR/diagnosia-api/internal/models"
	"github.com/harentsoaR/diagnosia-api/internal/store"
	"github.com/rs/zerolog"
)

var (
	// ErrNoSlotsAvailable is returned when no test with the requested name has a free slot.
	ErrNoSlotsAvailable = errors.New("no slots available")
	ErrMissingTestName  = errors.New("testName is required")
)

// BookingService turns a paid test into an appointment.
type BookingService struct {
	tests        store.TestStore
	appointments store.AppointmentStore
}

func NewBookingService(tests store.TestStore, appointments store.AppointmentStore) *BookingService {
	return &BookingService{tests: tests, appointments: appointments}
}

// Book reserves a slot on the named test and stores apt as submitted. The
// reservation is a single conditional update, so concurrent bookings of the
// same test need no lock. If the appointment cannot be stored the slot is
// released on the test that was reserved.
func (s *BookingService) Book(ctx context.Context, apt models.Document) (models.WriteResult, error) {
	result, err := s.book(ctx, apt)
	metrics.Bookings.WithLabelValues(bookingOutcome(err)).Inc()
	return result, err
}

func (s *BookingService) book(ctx context.Context, apt models.Document) (models.WriteResult, error) {
	testName := models.StringField(apt, "testName")
	if testName == "" {
		return models.WriteResult{}, ErrMissingTestName
	}
	apt = models.Clone(apt)
	// Delivery status is only ever set by report filing.
	delete(apt, "status")

	testID, ok, err := s.tests.ReserveSlot(ctx, testName)
	if err != nil {
		return models.WriteResult{}, fmt.Errorf("reserve slot: %w", err)
	}
	if !ok {
		return models.WriteResult{}, ErrNoSlotsAvailable
	}

	result, err := s.appointments.Create(ctx, apt)
	if err != nil {
		if _, relErr := s.tests.ReleaseSlot(context.WithoutCancel(ctx), testID); relErr != nil {
			zerolog.Ctx(ctx).Error().Err(relErr).Str("test", testID.Hex()).Msg("release slot after failed booking")
		}
		return models.WriteResult{}, fmt.Errorf("insert appointment: %w", err)
	}
	return result, nil
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return "booked"
	case errors.Is(err, ErrNoSlotsAvailable):
		return "no_slots"
	case errors.Is(err, ErrMissingTestName):
		return "rejected"
	default:
		return "error"
	}
}
