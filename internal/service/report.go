package service

import (
	"context"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/repository"
)

// Report is the read-only marketplace summary shown to administrators.
type Report struct {
	TotalUsers         int     `json:"total_users"`
	TotalContacts      int     `json:"total_contacts"`
	EnrichedContacts   int     `json:"enriched_contacts"`
	TotalIntros        int     `json:"total_intros"`
	ActiveIntros       int     `json:"active_intros"`
	CompletedIntros    int     `json:"completed_intros"`
	DeclinedIntros     int     `json:"declined_intros"`
	SuccessRate        int     `json:"success_rate"`
	ActiveConnectors   int     `json:"active_connectors"`
	MeanResponseRate   float64 `json:"mean_response_rate"`
	MedianResponseRate float64 `json:"median_response_rate"`
}

// ReportService aggregates marketplace statistics.
type ReportService struct {
	users    repository.UsersRepository
	contacts repository.ContactsRepository
	intros   repository.IntroRequestsRepository
	stats    repository.ConnectorStatsRepository
}

// NewReportService wires the reporting query.
func NewReportService(
	users repository.UsersRepository,
	contacts repository.ContactsRepository,
	intros repository.IntroRequestsRepository,
	connectorStats repository.ConnectorStatsRepository,
) *ReportService {
	return &ReportService{users: users, contacts: contacts, intros: intros, stats: connectorStats}
}

// Build computes the report. Connectors that were never asked are excluded
// from the response rate distribution.
func (s *ReportService) Build(ctx context.Context) (*Report, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	totals, err := s.contacts.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("count contacts: %w", err)
	}
	byStatus, err := s.intros.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count intro requests: %w", err)
	}
	connectors, err := s.stats.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list connector stats: %w", err)
	}

	report := &Report{
		TotalUsers:       users,
		TotalContacts:    totals.Total,
		EnrichedContacts: totals.Enriched,
		ActiveIntros:     byStatus[entity.IntroPending] + byStatus[entity.IntroAccepted],
		CompletedIntros:  byStatus[entity.IntroCompleted],
		DeclinedIntros:   byStatus[entity.IntroDeclined],
	}
	for _, n := range byStatus {
		report.TotalIntros += n
	}
	report.SuccessRate = entity.ResponseRate(report.CompletedIntros, report.TotalIntros)

	rates := make([]float64, 0, len(connectors))
	for _, c := range connectors {
		if c.TotalRequests == 0 {
			continue
		}
		c.Recompute()
		rates = append(rates, float64(c.ResponseRate))
	}
	report.ActiveConnectors = len(rates)
	if len(rates) > 0 {
		mean, err := stats.Mean(rates)
		if err != nil {
			return nil, fmt.Errorf("mean response rate: %w", err)
		}
		median, err := stats.Median(rates)
		if err != nil {
			return nil, fmt.Errorf("median response rate: %w", err)
		}
		report.MeanResponseRate = round2(mean)
		report.MedianResponseRate = round2(median)
	}
	return report, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
