// Package ses provides email notification services via AWS SES
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "award-import-engine/internal/config"
	"award-import-engine/internal/models"
	"award-import-engine/internal/utils"
)

// Service handles SES email operations
type Service struct {
	client    *ses.Client
	fromEmail string
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	ReplyTo  string
}

// ImportSummaryParams contains data for the import summary email
type ImportSummaryParams struct {
	OperatorEmail string
	FileName      string
	Result        *models.ImportResult
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service
func NewService(ctx context.Context) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	appCfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	client := ses.NewFromConfig(cfg)

	return &Service{
		client:    client,
		fromEmail: appCfg.SESSenderEmail,
	}, nil
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.ReplyTo != "" {
		input.ReplyToAddresses = []string{params.ReplyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.Logger.Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	utils.Logger.Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", *result.MessageId),
	)

	return &SendEmailResult{
		MessageID: *result.MessageId,
		SentAt:    time.Now(),
	}, nil
}

// SendImportSummary sends the post-import summary to the operator.
func (s *Service) SendImportSummary(ctx context.Context, params ImportSummaryParams) (*SendEmailResult, error) {
	htmlBody, err := s.renderImportSummaryHTML(params)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	textBody := s.renderImportSummaryText(params)

	subject := fmt.Sprintf("Candidate import finished: %d created, %d updated, %d errors",
		params.Result.Created, params.Result.Updated, params.Result.Errors)

	return s.SendEmail(ctx, EmailParams{
		To:       params.OperatorEmail,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	})
}

// renderImportSummaryHTML renders the HTML email template
func (s *Service) renderImportSummaryHTML(params ImportSummaryParams) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1a3a5c; color: white; padding: 30px; border-radius: 10px 10px 0 0; text-align: center; }
        .header h1 { margin: 0; font-size: 22px; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
        .stat-row { display: flex; justify-content: space-between; background: white; border-radius: 8px; padding: 15px 20px; margin: 10px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .stat-label { color: #666; }
        .stat-value { font-weight: bold; }
        .error-list { background: #fff3f3; border-radius: 8px; padding: 15px 20px; margin-top: 15px; }
        .error-list li { font-size: 13px; color: #a33; }
        .footer { text-align: center; margin-top: 30px; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Candidate Import Summary</h1>
        <p>{{.FileName}}</p>
    </div>
    <div class="content">
        <div class="stat-row"><span class="stat-label">Created</span><span class="stat-value">{{.Result.Created}}</span></div>
        <div class="stat-row"><span class="stat-label">Updated</span><span class="stat-value">{{.Result.Updated}}</span></div>
        <div class="stat-row"><span class="stat-label">Skipped</span><span class="stat-value">{{.Result.Skipped}}</span></div>
        <div class="stat-row"><span class="stat-label">Errors</span><span class="stat-value">{{.Result.Errors}}</span></div>
        <div class="stat-row"><span class="stat-label">Photos attached</span><span class="stat-value">{{.Result.PhotosAttached}}</span></div>

        {{if .Result.ErrorDetails}}
        <div class="error-list">
            <strong>Failed rows</strong>
            <ul>
            {{range .Result.ErrorDetails}}
                <li>Row {{.Row}} ({{.Name}}): {{.Error}}</li>
            {{end}}
            </ul>
        </div>
        {{end}}
    </div>
    <div class="footer">
        <p>This email was sent by Award Import Engine</p>
    </div>
</body>
</html>`

	t, err := template.New("import_summary").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, params); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// renderImportSummaryText renders plain text version
func (s *Service) renderImportSummaryText(params ImportSummaryParams) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Import of %s finished.\n\n", params.FileName))
	buf.WriteString(fmt.Sprintf("Created: %d\n", params.Result.Created))
	buf.WriteString(fmt.Sprintf("Updated: %d\n", params.Result.Updated))
	buf.WriteString(fmt.Sprintf("Skipped: %d\n", params.Result.Skipped))
	buf.WriteString(fmt.Sprintf("Errors: %d\n", params.Result.Errors))
	buf.WriteString(fmt.Sprintf("Photos attached: %d\n\n", params.Result.PhotosAttached))

	if len(params.Result.ErrorDetails) > 0 {
		buf.WriteString("Failed rows:\n")
		for _, detail := range params.Result.ErrorDetails {
			buf.WriteString(fmt.Sprintf("  Row %d (%s): %s\n", detail.Row, detail.Name, detail.Error))
		}
		buf.WriteString("\n")
	}

	buf.WriteString("Award Import Engine\n")

	return buf.String()
}

// VerifyEmailAddress verifies an email address for sending
func (s *Service) VerifyEmailAddress(ctx context.Context, email string) error {
	input := &ses.VerifyEmailAddressInput{
		EmailAddress: aws.String(email),
	}

	_, err := s.client.VerifyEmailAddress(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	utils.Logger.Info("Email verification initiated", zap.String("email", email))
	return nil
}
