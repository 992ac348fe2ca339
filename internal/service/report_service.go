package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"vocabdrill/internal/models"
	"vocabdrill/internal/validation"
)

// emailSender is the part of the SES client the report service uses
type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// ReportService e-mails session summaries via Amazon SES
type ReportService struct {
	client    emailSender
	fromEmail string
	fromName  string
	recipient string
	enabled   bool
	debug     bool
}

// NewReportService creates a report service. Without a sender or a recipient
// the service is disabled and sends nothing.
func NewReportService(ctx context.Context, awsRegion, fromEmail, fromName, recipient string, debug bool) (*ReportService, error) {
	if fromEmail == "" || recipient == "" {
		log.Println("Session reports disabled: SES_FROM_EMAIL or REPORT_EMAIL not configured")
		return &ReportService{enabled: false, debug: debug}, nil
	}

	if err := validation.ValidateEmail(fromEmail); err != nil {
		return nil, fmt.Errorf("invalid report sender: %w", err)
	}
	if err := validation.ValidateEmail(recipient); err != nil {
		return nil, fmt.Errorf("invalid report recipient: %w", err)
	}

	if debug {
		log.Printf("[DEBUG] Initializing report service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From: %s <%s>, to: %s", fromName, fromEmail, recipient)
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Session reports enabled: from=%s, to=%s, region=%s", fromEmail, recipient, awsRegion)

	return &ReportService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		recipient: recipient,
		enabled:   true,
		debug:     debug,
	}, nil
}

// IsEnabled returns whether reports are sent
func (s *ReportService) IsEnabled() bool {
	return s.enabled
}

// SendSessionReport e-mails the summary of a finished session
func (s *ReportService) SendSessionReport(ctx context.Context, lesson models.Lesson, record models.SessionRecord, items []models.VocabularyItem) error {
	if !s.enabled {
		if s.debug {
			log.Printf("[DEBUG] Skipping session report (service disabled): %s", record.ID)
		}
		return nil
	}

	subject := fmt.Sprintf("%s: %d%% in %s", lesson.Name, record.Score, record.Mode)
	htmlBody, textBody := renderReport(lesson, record, items)

	return s.sendEmail(ctx, subject, htmlBody, textBody)
}

// reportLine is one answered word in a report
type reportLine struct {
	Word    string
	Meaning string
	Quality models.Quality
}

func reportLines(record models.SessionRecord, items []models.VocabularyItem) []reportLine {
	byID := make(map[string]models.VocabularyItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	lines := make([]reportLine, 0, len(record.Outcomes))
	for _, outcome := range record.Outcomes {
		item, ok := byID[outcome.ItemID]
		if !ok {
			item = models.VocabularyItem{Word: outcome.ItemID}
		}
		lines = append(lines, reportLine{Word: item.Word, Meaning: item.Meaning, Quality: outcome.Quality})
	}
	return lines
}

func renderReport(lesson models.Lesson, record models.SessionRecord, items []models.VocabularyItem) (string, string) {
	lines := reportLines(record, items)
	duration := record.CompletedAt.Sub(record.StartedAt).Round(time.Second).String()

	var rows, text strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&rows, "\t\t\t\t<tr><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(line.Word), html.EscapeString(line.Meaning), line.Quality)
		fmt.Fprintf(&text, "- %s (%s): %s\n", line.Word, line.Meaning, line.Quality)
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		td { padding: 4px 8px; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>%s</h1>
		</div>
		<div class="content">
			<p>Score: <strong>%d%%</strong> (%d of %d words correct, %s mode, %s)</p>
			<table>
%s			</table>
		</div>
	</div>
</body>
</html>
`, html.EscapeString(lesson.Name), record.Score, record.CorrectWords, record.TotalWords, record.Mode, duration, rows.String())

	textBody := fmt.Sprintf(`%s

Score: %d%% (%d of %d words correct, %s mode, %s)

%s`, lesson.Name, record.Score, record.CorrectWords, record.TotalWords, record.Mode, duration, text.String())

	return htmlBody, textBody
}

func (s *ReportService) sendEmail(ctx context.Context, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{s.recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send report to %s: %w", s.recipient, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
	}

	log.Printf("Session report sent: to=%s, subject=%s", s.recipient, subject)
	return nil
}
