package services

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/models"
)

const overviewSheet = "Overview"

type reportExportService struct{}

func NewReportExportService() ReportExportService {
	return &reportExportService{}
}

// ExportReport renders the report as an XLSX workbook
func (s *reportExportService) ExportReport(profile models.BrandProfile, report *models.AnalysisReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	overview := [][]interface{}{
		{"Brand", profile.Name},
		{"Website", profile.Website},
		{"Industry", profile.Industry},
		{"Competitors", strings.Join(profile.CompetitorNames(), ", ")},
		{"Overall Score", report.OverallScore},
		{"Prompts Generated", len(report.PromptsGenerated)},
		{"Generated At", report.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	if err := writeSheet(f, overviewSheet, []string{"Field", "Value"}, overview, headerStyle); err != nil {
		return nil, err
	}

	var sov [][]interface{}
	for _, s := range report.ShareOfVoice {
		sov = append(sov, []interface{}{s.Brand, s.Score, s.Sentiment, s.Mentions, s.PositiveMentions, s.NegativeMentions, s.WinRate})
	}
	if err := writeSheet(f, "Share of Voice",
		[]string{"Brand", "Score", "Sentiment", "Mentions", "Positive", "Negative", "Win Rate"}, sov, headerStyle); err != nil {
		return nil, err
	}

	var topics [][]interface{}
	for _, t := range report.TopicScores {
		topics = append(topics, []interface{}{t.Topic, t.BrandScore, t.CompetitorAvg})
	}
	if err := writeSheet(f, "Topics", []string{"Topic", "Brand Score", "Competitor Avg"}, topics, headerStyle); err != nil {
		return nil, err
	}

	var citations [][]interface{}
	for _, c := range report.Citations {
		citations = append(citations, []interface{}{c.Source, string(c.DomainAuthority), c.Mentioned, c.Count, c.URL})
	}
	if err := writeSheet(f, "Citations",
		[]string{"Source", "Authority", "Mentioned", "Count", "URL"}, citations, headerStyle); err != nil {
		return nil, err
	}

	var prompts [][]interface{}
	for _, p := range report.PromptsGenerated {
		rank := ""
		if p.Rank != nil {
			rank = fmt.Sprintf("%d", *p.Rank)
		}
		prompts = append(prompts, []interface{}{
			p.ID, p.Topic, string(p.Intent), p.Text, p.Analyzed, p.BrandMentioned,
			strings.Join(p.CompetitorsMentioned, ", "), string(p.Sentiment), rank, p.Recommendation,
		})
	}
	if err := writeSheet(f, "Prompts",
		[]string{"ID", "Topic", "Intent", "Prompt", "Analyzed", "Brand Mentioned", "Competitors", "Sentiment", "Rank", "Recommendation"},
		prompts, headerStyle); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}, headerStyle int) error {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("failed to look up sheet %s: %w", sheet, err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for r, row := range rows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetColWidth(sheet, "A", lastCol, 20)
	return nil
}
