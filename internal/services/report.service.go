package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phishsim/gateway/internal/model"
)

const csvHeader = `"Campaign","Recipient Name","Recipient Email","Department","IP Address","Clicked At"`

type ReportService struct {
	campaignRepo  CampaignRepository
	recipientRepo RecipientRepository
	clickRepo     ClickEventRepository
}

func NewReportService(
	campaignRepo CampaignRepository,
	recipientRepo RecipientRepository,
	clickRepo ClickEventRepository,
) *ReportService {
	return &ReportService{
		campaignRepo:  campaignRepo,
		recipientRepo: recipientRepo,
		clickRepo:     clickRepo,
	}
}

// CampaignStats aggregates one campaign. The recipient total counts every
// stored recipient rather than the campaign's send list, and the click rate
// is unique clickers over that total, formatted with two decimals.
func (s *ReportService) CampaignStats(ctx context.Context, id uuid.UUID) (*model.CampaignStats, error) {
	if _, err := s.campaignRepo.GetByID(ctx, id); err != nil {
		return nil, mapCampaignErr(err)
	}

	totalRecipients, err := s.recipientRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalClicks, err := s.clickRepo.CountClicked(ctx, id)
	if err != nil {
		return nil, err
	}
	uniqueClickers, err := s.clickRepo.CountDistinctClickers(ctx, id)
	if err != nil {
		return nil, err
	}

	rate := "0.00"
	if totalRecipients > 0 {
		rate = fmt.Sprintf("%.2f", float64(uniqueClickers)/float64(totalRecipients)*100)
	}

	return &model.CampaignStats{
		TotalRecipients: int(totalRecipients),
		TotalClicks:     int(totalClicks),
		UniqueClickers:  int(uniqueClickers),
		ClickRate:       rate,
	}, nil
}

// CampaignClicks lists the campaign's click events, recipients included.
func (s *ReportService) CampaignClicks(ctx context.Context, id uuid.UUID) ([]*model.ClickEvent, error) {
	if _, err := s.campaignRepo.GetByID(ctx, id); err != nil {
		return nil, mapCampaignErr(err)
	}
	return s.clickRepo.ListByCampaign(ctx, id)
}

// AllClicks lists every click event with recipient and campaign joined.
func (s *ReportService) AllClicks(ctx context.Context) ([]*model.ClickEvent, error) {
	return s.clickRepo.ListAll(ctx)
}

// ClicksCSV renders the full click report. Every field is quoted, missing
// values render as N/A, and an empty report is just the header line.
func (s *ReportService) ClicksCSV(ctx context.Context) (string, error) {
	events, err := s.clickRepo.ListAll(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteString("\n")

	for _, e := range events {
		row := []string{
			csvValue(campaignName(e)),
			csvValue(recipientName(e)),
			csvValue(recipientEmail(e)),
			csvValue(recipientDepartment(e)),
			csvValue(strOrEmpty(e.IPAddress)),
			csvValue(clickedAt(e)),
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}

	return b.String(), nil
}

// csvValue always quotes, doubling embedded quotes, and substitutes N/A for
// anything missing.
func csvValue(v string) string {
	if v == "" {
		v = "N/A"
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

func campaignName(e *model.ClickEvent) string {
	if e.Campaign == nil {
		return ""
	}
	return e.Campaign.Name
}

func recipientName(e *model.ClickEvent) string {
	if e.Recipient == nil || e.Recipient.Name == nil {
		return ""
	}
	return *e.Recipient.Name
}

func recipientEmail(e *model.ClickEvent) string {
	if e.Recipient == nil {
		return ""
	}
	return e.Recipient.Email
}

func recipientDepartment(e *model.ClickEvent) string {
	if e.Recipient == nil || e.Recipient.Department == nil {
		return ""
	}
	return *e.Recipient.Department
}

func clickedAt(e *model.ClickEvent) string {
	if e.ClickedAt == nil {
		return ""
	}
	return e.ClickedAt.UTC().Format("2006-01-02 15:04:05")
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
