package services

import (
	"context"
	"fmt"

	"github.com/harentsoaR/diagnosia-api/internal/metrics"
	"github.com/harentsoaR/diagnosia-api/internal/models"
	"github.com/harentsoaR/diagnosia-api/internal/store"
	"github.com/rs/zerolog"
)

type ReportService struct {
	reports      store.ReportStore
	appointments store.AppointmentStore
}

func NewReportService(reports store.ReportStore, appointments store.AppointmentStore) *ReportService {
	return &ReportService{reports: reports, appointments: appointments}
}

// File marks the appointment named by the report's "id" delivered and stores
// the report as submitted. A failed insert leaves the appointment marked.
func (s *ReportService) File(ctx context.Context, report models.Document) (models.WriteResult, error) {
	appointmentID := models.StringField(report, "id")
	if _, err := store.ParseID(appointmentID); err != nil {
		return models.WriteResult{}, err
	}
	if _, err := s.appointments.SetStatus(ctx, appointmentID, models.AppointmentDelivered); err != nil {
		return models.WriteResult{}, fmt.Errorf("mark appointment delivered: %w", err)
	}

	res, err := s.reports.Create(ctx, report)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("appointment", appointmentID).
			Msg("appointment marked delivered but report was not stored")
		return models.WriteResult{}, fmt.Errorf("insert report: %w", err)
	}
	metrics.ReportsFiled.Inc()
	return res, nil
}
