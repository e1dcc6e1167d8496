// Package gdrive uploads export files to a Google Drive folder.
package gdrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/pricecollect/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driven"
	"github.com/custodia-labs/pricecollect/internal/logger"
)

// Ensure Uploader implements the interface.
var _ driven.Uploader = (*Uploader)(nil)

// Uploader creates files in a Drive folder.
type Uploader struct {
	svc      *drive.Service
	folderID string
	limiter  *ratelimit.Limiter
}

// NewDriveService creates a Google Drive API service using the provided TokenSource.
func NewDriveService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*drive.Service, error) {
	return drive.NewService(ctx, append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)...)
}

// New creates an uploader authorised by a static OAuth access token.
// folderID may be empty to upload into the root of the account's Drive.
func New(ctx context.Context, accessToken, folderID string, opts ...option.ClientOption) (*Uploader, error) {
	if accessToken == "" {
		return nil, errors.New("drive access token is required")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	svc, err := NewDriveService(ctx, ts, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return NewWithService(svc, folderID), nil
}

// NewWithService wraps an existing Drive service.
func NewWithService(svc *drive.Service, folderID string) *Uploader {
	return &Uploader{
		svc:      svc,
		folderID: folderID,
		limiter:  ratelimit.New(ratelimit.TargetDrive),
	}
}

// Upload creates a new file called name holding data.
func (u *Uploader) Upload(ctx context.Context, name, contentType string, data []byte) error {
	if err := u.limiter.Wait(ctx); err != nil {
		return err
	}

	meta := &drive.File{
		Name:     name,
		MimeType: contentType,
	}
	if u.folderID != "" {
		meta.Parents = []string{u.folderID}
	}

	created, err := u.svc.Files.Create(meta).
		Media(bytes.NewReader(data), googleapi.ContentType(contentType)).
		Fields("id", "name").
		Context(ctx).
		Do()
	if err != nil {
		if wait, limited := rateLimited(err); limited {
			u.limiter.Backoff(wait)
		}
		return fmt.Errorf("drive upload %s: %w", name, err)
	}

	logger.Debug("uploaded to drive", "name", created.Name, "id", created.Id)
	return nil
}

// rateLimited reports whether err is a quota rejection and how long to wait.
func rateLimited(err error) (time.Duration, bool) {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return 0, false
	}
	if apiErr.Code != http.StatusTooManyRequests && !isQuotaReason(apiErr) {
		return 0, false
	}
	if secs, convErr := strconv.Atoi(apiErr.Header.Get("Retry-After")); convErr == nil && secs > 0 {
		return time.Duration(secs) * time.Second, true
	}
	return 0, true
}

func isQuotaReason(apiErr *googleapi.Error) bool {
	if apiErr.Code != http.StatusForbidden {
		return false
	}
	for _, item := range apiErr.Errors {
		if item.Reason == "userRateLimitExceeded" || item.Reason == "rateLimitExceeded" {
			return true
		}
	}
	return false
}
