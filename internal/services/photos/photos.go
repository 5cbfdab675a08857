// Package photos attaches candidate photos from uploaded assets or remote URLs.
package photos

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	s3service "award-import-engine/internal/services/s3"
	"award-import-engine/internal/utils"
)

// maxPhotoBytes bounds remote photo downloads (5 MB).
const maxPhotoBytes = 5 * 1024 * 1024

var extensionByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Service implements photo attachment over S3 assets and remote URLs.
type Service struct {
	s3     *s3service.Service
	client *http.Client
}

// NewService creates a photo service backed by the given S3 service.
func NewService(s3 *s3service.Service) *Service {
	return &Service{
		s3: s3,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AttachByName finds a pre-uploaded photo asset whose filename matches the
// candidate name and copies it to the candidate's own key. Returns the new
// key, or an error when no asset matches.
func (s *Service) AttachByName(ctx context.Context, candidateID int64, candidateName string) (string, error) {
	sourceKey, err := s.s3.FindPhotoByName(ctx, candidateName)
	if err != nil {
		return "", fmt.Errorf("could not search photo assets: %w", err)
	}
	if sourceKey == "" {
		return "", fmt.Errorf("no uploaded photo matches name %q", candidateName)
	}

	destKey := fmt.Sprintf("photos/candidates/%d%s", candidateID, path.Ext(sourceKey))
	if err := s.s3.CopyFile(ctx, sourceKey, destKey); err != nil {
		return "", err
	}

	utils.Logger.Info("Attached photo from uploaded asset",
		zap.Int64("candidate_id", candidateID),
		zap.String("source", sourceKey),
		zap.String("key", destKey),
	)
	return destKey, nil
}

// AttachFromURL downloads a photo and stores it under the candidate's key.
// Non-image responses and oversized files are rejected.
func (s *Service) AttachFromURL(ctx context.Context, candidateID int64, photoURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid photo URL: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("could not fetch photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("photo fetch returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	ext, ok := extensionByContentType[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported photo content type %q", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return "", fmt.Errorf("could not read photo: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return "", fmt.Errorf("photo exceeds %d bytes", maxPhotoBytes)
	}

	// A random suffix keeps re-imports from silently overwriting a photo
	// that was replaced manually.
	destKey := fmt.Sprintf("photos/candidates/%d-%s%s", candidateID, uuid.NewString()[:8], ext)
	if err := s.s3.UploadFile(ctx, destKey, data, contentType); err != nil {
		return "", err
	}

	utils.Logger.Info("Attached photo from URL",
		zap.Int64("candidate_id", candidateID),
		zap.String("url", photoURL),
		zap.String("key", destKey),
	)
	return destKey, nil
}
