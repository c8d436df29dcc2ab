package relay

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/DanishBukhari/IntegWithGhl/internal/system/constants"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/log"
)

// Uploader is the slice of the field service client the relay needs.
type Uploader interface {
	CreateAttachment(ctx context.Context, relatedObject, relatedUUID, name, fileType string) (string, error)
	UploadAttachmentFile(ctx context.Context, attachmentUUID, contentType string, content io.Reader) error
}

// PhotoRef references one binary asset to relay, with an optional fallback
// download location tried when the primary fails.
type PhotoRef struct {
	PrimaryURL  string
	FallbackURL string
}

// Relay downloads photos referenced by a CRM-side record and re-uploads them
// as attachments on field-service-side records.
type Relay struct {
	HTTPClient *http.Client
	Uploader   Uploader
}

func New(uploader Uploader) *Relay {
	return &Relay{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Uploader:   uploader,
	}
}

// RelayPhotos processes each referenced asset independently and returns the
// number relayed in full. A single asset's permanent failure never blocks
// its siblings; callers treat the whole relay as best-effort.
func (r *Relay) RelayPhotos(ctx context.Context, jobUUID, companyUUID string, refs []PhotoRef) int {
	logger := log.GetLogger()
	succeeded := 0
	for i, ref := range refs {
		if err := r.relayOne(ctx, jobUUID, companyUUID, ref); err != nil {
			logger.Warn("Photo relay failed",
				log.String("jobUuid", jobUUID),
				log.Int("photoIndex", i),
				log.Error(err))
			continue
		}
		succeeded++
	}
	return succeeded
}

// relayOne handles a single asset: download (primary, then fallback),
// content-type validation, scoped temp file, upload as a child of both the
// job and its company. The temp file is removed on every exit path.
func (r *Relay) relayOne(ctx context.Context, jobUUID, companyUUID string, ref PhotoRef) error {
	contentType, body, err := r.download(ctx, ref)
	if err != nil {
		return err
	}
	defer body.Close()

	ext := extensionFor(contentType)
	tmp, err := os.CreateTemp("", "relay-photo-*"+ext)
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	tmpName := tmp.Name()
	// The temp file's lifetime is bounded to this one asset.
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	name := "photo-" + uuid.New().String() + ext
	if err := r.upload(ctx, constants.RelatedObjectJob, jobUUID, tmpName, name, contentType, ext); err != nil {
		return err
	}
	if companyUUID != "" {
		if err := r.upload(ctx, constants.RelatedObjectCompany, companyUUID, tmpName, name, contentType, ext); err != nil {
			return err
		}
	}
	return nil
}

// download fetches the asset from the primary URL, falling back to the
// secondary on any failure, and validates the content type against the
// image allow-list.
func (r *Relay) download(ctx context.Context, ref PhotoRef) (string, io.ReadCloser, error) {
	contentType, body, primaryErr := r.fetch(ctx, ref.PrimaryURL)
	if primaryErr == nil {
		return contentType, body, nil
	}
	if ref.FallbackURL == "" {
		return "", nil, primaryErr
	}
	log.GetLogger().Debug("Primary download failed; trying fallback",
		log.String("primaryUrl", ref.PrimaryURL),
		log.Error(primaryErr))
	contentType, body, fallbackErr := r.fetch(ctx, ref.FallbackURL)
	if fallbackErr != nil {
		return "", nil, errors.Wrapf(fallbackErr, "both download paths failed (primary: %v)", primaryErr)
	}
	return contentType, body, nil
}

func (r *Relay) fetch(ctx context.Context, rawURL string) (string, io.ReadCloser, error) {
	if rawURL == "" {
		return "", nil, fmt.Errorf("empty download url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", nil, err
	}
	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return "", nil, err
	}
	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return "", nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if !constants.AllowedAttachmentContentTypes[contentType] {
		_ = resp.Body.Close()
		return "", nil, fmt.Errorf("disallowed content type %q", contentType)
	}
	return contentType, resp.Body, nil
}

// upload registers the attachment record once, then uploads its binary
// content, retrying only the content upload. Re-registering on retry would
// leave an orphaned attachment record behind each failed upload; the client
// already retries transient registration failures internally.
func (r *Relay) upload(ctx context.Context, relatedObject, relatedUUID, tmpName, name, contentType, ext string) error {
	attachmentUUID, err := r.Uploader.CreateAttachment(ctx, relatedObject, relatedUUID, name, ext)
	if err != nil {
		return errors.Wrapf(err, "registering attachment on %s %s", relatedObject, relatedUUID)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		lastErr = r.uploadFile(ctx, attachmentUUID, tmpName, contentType)
		if lastErr == nil {
			return nil
		}
	}
	return errors.Wrapf(lastErr, "uploading attachment %s to %s %s", attachmentUUID, relatedObject, relatedUUID)
}

func (r *Relay) uploadFile(ctx context.Context, attachmentUUID, tmpName, contentType string) error {
	file, err := os.Open(tmpName)
	if err != nil {
		return err
	}
	defer file.Close()
	return r.Uploader.UploadAttachmentFile(ctx, attachmentUUID, contentType, file)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return filepath.Ext(exts[0])
	}
	return ""
}
