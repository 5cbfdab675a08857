// Package handlers provides HTTP and Lambda handlers for the award import engine.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-lambda-go/events"

	appConfig "award-import-engine/internal/config"
	"award-import-engine/internal/importer"
	"award-import-engine/internal/models"
	"award-import-engine/internal/services/database"
	"award-import-engine/internal/services/photos"
	s3service "award-import-engine/internal/services/s3"
	sesservice "award-import-engine/internal/services/ses"
	"award-import-engine/internal/utils"
)

// CSVProcessorHandler handles S3 events for candidate CSV imports.
type CSVProcessorHandler struct {
	cfg      *appConfig.Config
	s3       *s3service.Service
	db       *database.DB
	importer *importer.Importer
	mailer   *sesservice.Service
}

// NewCSVProcessorHandler creates a new CSV processor handler.
func NewCSVProcessorHandler(ctx context.Context) (*CSVProcessorHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s3Svc, err := s3service.NewService(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create S3 service: %w", err)
	}

	var mailer *sesservice.Service
	if cfg.OperatorEmail != "" && cfg.SESSenderEmail != "" {
		mailer, err = sesservice.NewService(ctx)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create SES service: %w", err)
		}
	}

	candidates := database.NewCandidateRepository(db)
	categories := database.NewCategoryRepository(db)
	photoSvc := photos.NewService(s3Svc)

	return &CSVProcessorHandler{
		cfg:      cfg,
		s3:       s3Svc,
		db:       db,
		importer: importer.New(nil, candidates, categories, photoSvc),
		mailer:   mailer,
	}, nil
}

// Handle processes S3 events for uploaded candidate CSV files.
func (h *CSVProcessorHandler) Handle(ctx context.Context, s3Event events.S3Event) (*models.ImportResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		result := &models.ImportResult{}
		result.AddMessage("No records to process")
		return result, nil
	}

	record := s3Event.Records[0]
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to decode S3 key: %w", err)
	}

	logger.Info("Processing candidate CSV",
		utils.String("bucket", record.S3.Bucket.Name),
		utils.String("key", key))

	content, err := h.s3.DownloadFile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download CSV: %w", err)
	}

	result := h.importer.Import(ctx, content, importer.Options{
		UpdateExisting: h.cfg.UpdateExisting,
		ImportPhotos:   h.cfg.ImportPhotos,
		BatchSize:      h.cfg.BatchSize,
		MaxFileBytes:   h.cfg.MaxFileBytes,
	})

	if h.cfg.WebhookURL != "" && result.Processed() > 0 {
		if err := h.triggerWebhook(ctx, key, result); err != nil {
			logger.Warn("Failed to trigger webhook", utils.Error(err))
		}
	}

	if h.mailer != nil {
		_, err := h.mailer.SendImportSummary(ctx, sesservice.ImportSummaryParams{
			OperatorEmail: h.cfg.OperatorEmail,
			FileName:      key,
			Result:        result,
		})
		if err != nil {
			logger.Warn("Failed to send import summary email", utils.Error(err))
		}
	}

	if archiveKey, err := h.s3.ArchiveFile(ctx, key); err != nil {
		logger.Warn("Failed to archive file", utils.Error(err))
	} else {
		logger.Info("Archived processed CSV", utils.String("key", archiveKey))
	}

	return result, nil
}

// triggerWebhook notifies a downstream workflow that an import finished.
func (h *CSVProcessorHandler) triggerWebhook(ctx context.Context, key string, result *models.ImportResult) error {
	payload := map[string]interface{}{
		"file":      key,
		"created":   result.Created,
		"updated":   result.Updated,
		"skipped":   result.Skipped,
		"errors":    result.Errors,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// Close cleans up resources.
func (h *CSVProcessorHandler) Close() {
	if h.db != nil {
		h.db.Close()
	}
}
