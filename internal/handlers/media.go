// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"shopadmin/internal/cache"
	"shopadmin/internal/middleware"
	"shopadmin/internal/models"
	"shopadmin/internal/storage"
	"shopadmin/internal/store"
)

const (
	// maxUploadSize is the maximum allowed file upload size (50 MB).
	maxUploadSize = 50 << 20

	// thumbMaxWidth is the maximum thumbnail width in pixels.
	thumbMaxWidth = 400

	// thumbQuality is the JPEG quality for generated thumbnails.
	thumbQuality = 80

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000

	// presignExpiry is how long a signed URL for private files is valid.
	presignExpiry = 1 * time.Hour
)

// allowedMediaTypes defines MIME types accepted for upload.
var allowedMediaTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// thumbableTypes are image types that support thumbnail generation.
// GIF is excluded to preserve animation; SVG is vector.
var thumbableTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Media groups the image library HTTP handlers. Catalog images go to the
// private bucket and are served through signed URLs; the shop logo is
// uploaded to the public bucket.
type Media struct {
	media      *store.MediaStore
	storage    *storage.Client
	signedURLs *cache.SignedURLCache
}

// NewMedia creates a new Media handler group.
func NewMedia(media *store.MediaStore, storage *storage.Client, signedURLs *cache.SignedURLCache) *Media {
	return &Media{media: media, storage: storage, signedURLs: signedURLs}
}

// mediaView is a media record with its resolved URLs.
type mediaView struct {
	models.Media
	URL      string `json:"url,omitempty"`
	ThumbURL string `json:"thumb_url,omitempty"`
}

// view resolves the URLs for one media record. Public files get the
// direct URL; private ones a signed URL from the cache. Signing failures
// leave the URL empty rather than failing the whole listing.
func (h *Media) view(r *http.Request, m models.Media) mediaView {
	v := mediaView{Media: m}
	if h.storage == nil {
		return v
	}

	if m.Bucket == h.storage.PublicBucket() {
		v.URL = h.storage.FileURL(m.S3Key)
		if m.ThumbS3Key != nil {
			v.ThumbURL = h.storage.FileURL(*m.ThumbS3Key)
		}
		return v
	}

	if url, err := h.signedURL(r, m.Bucket, m.S3Key); err == nil {
		v.URL = url
	} else {
		slog.Warn("presign failed", "error", err, "key", m.S3Key)
	}
	if m.ThumbS3Key != nil {
		if url, err := h.signedURL(r, m.Bucket, *m.ThumbS3Key); err == nil {
			v.ThumbURL = url
		}
	}
	return v
}

// signedURL returns a signed URL for a private object, served from the
// cache when a still-fresh one exists.
func (h *Media) signedURL(r *http.Request, bucket, key string) (string, error) {
	if url, ok := h.signedURLs.Get(key); ok {
		return url, nil
	}
	url, err := h.storage.PresignedURL(r.Context(), bucket, key, presignExpiry)
	if err != nil {
		return "", err
	}
	h.signedURLs.Put(key, url, presignExpiry)
	return url, nil
}

// List returns a page of the image library, newest first.
func (h *Media) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			offset = page * limit
		}
	}

	items, err := h.media.List(limit, offset)
	if err != nil {
		serverError(w, "media list failed", err)
		return
	}

	views := make([]mediaView, 0, len(items))
	for _, m := range items {
		views = append(views, h.view(r, m))
	}

	total, err := h.media.Count()
	if err != nil {
		serverError(w, "media count failed", err)
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"items": views,
		"total": total,
	})
}

// Get returns a single media record with its resolved URLs.
func (h *Media) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid media id")
		return
	}

	m, err := h.media.FindByID(id)
	if err != nil {
		serverError(w, "media lookup failed", err)
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}
	writeData(w, http.StatusOK, h.view(r, *m))
}

// Upload handles multipart image upload to S3. Files land in the private
// bucket by default; bucket=public is used for the shop logo. Thumbnails
// are generated for raster image types.
func (h *Media) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())

	// Limit request body to maxUploadSize + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 50 MB.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 50 MB.")
		return
	}

	// Detect content type by sniffing the first 512 bytes.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		serverError(w, "upload read failed", err)
		return
	}
	contentType := http.DetectContentType(sniffBuf[:n])

	// SVG detection: DetectContentType returns text/xml or application/xml for SVGs.
	if strings.HasSuffix(strings.ToLower(header.Filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		contentType = "image/svg+xml"
	}

	if !allowedMediaTypes[contentType] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("File type %q is not allowed.", contentType))
		return
	}

	// Seek back to start after sniffing.
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		serverError(w, "upload seek failed", err)
		return
	}

	// Catalog images default to the private bucket; only the shop logo
	// asks for the public one.
	bucket := h.storage.PrivateBucket()
	if r.FormValue("bucket") == "public" {
		bucket = h.storage.PublicBucket()
	}

	// Generate a unique storage key.
	now := time.Now()
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = extensionFromType(contentType)
	}
	fileID := uuid.New().String()
	s3Key := fmt.Sprintf("media/%d/%02d/%s%s", now.Year(), now.Month(), fileID, ext)

	// Read the entire file into memory for upload and thumbnail generation.
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		serverError(w, "upload read failed", err)
		return
	}

	ctx := r.Context()
	if err := h.storage.Upload(ctx, bucket, s3Key, contentType, bytes.NewReader(fileBytes), int64(len(fileBytes))); err != nil {
		slog.Error("s3 upload failed", "error", err, "key", s3Key)
		writeError(w, http.StatusInternalServerError, "Failed to upload file.")
		return
	}

	// Generate and upload thumbnail for supported image types.
	var thumbKey *string
	if thumbableTypes[contentType] {
		thumbData, err := generateThumbnail(bytes.NewReader(fileBytes), thumbMaxWidth)
		if err != nil {
			slog.Warn("thumbnail generation failed", "error", err, "key", s3Key)
		} else if thumbData != nil {
			tk := fmt.Sprintf("media/%d/%02d/%s_thumb.jpg", now.Year(), now.Month(), fileID)
			if err := h.storage.Upload(ctx, bucket, tk, "image/jpeg", bytes.NewReader(thumbData), int64(len(thumbData))); err != nil {
				slog.Warn("thumbnail upload failed", "error", err, "key", tk)
			} else {
				thumbKey = &tk
			}
		}
	}

	// Store metadata in PostgreSQL.
	altText := r.FormValue("alt_text")
	media := &models.Media{
		Filename:     fileID + ext,
		OriginalName: header.Filename,
		ContentType:  contentType,
		SizeBytes:    int64(len(fileBytes)),
		Bucket:       bucket,
		S3Key:        s3Key,
		ThumbS3Key:   thumbKey,
		UploaderID:   sess.UserID,
	}
	if altText != "" {
		media.AltText = &altText
	}

	created, err := h.media.Create(media)
	if err != nil {
		slog.Error("media db insert failed", "error", err, "key", s3Key)
		writeError(w, http.StatusInternalServerError, "Failed to save file metadata.")
		return
	}

	writeData(w, http.StatusCreated, h.view(r, *created))
}

// Delete removes a media item from both S3 and the database, and drops
// any cached signed URLs for it.
func (h *Media) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid media id")
		return
	}

	// Delete from DB first (returns the row for S3 cleanup).
	deleted, err := h.media.Delete(id)
	if err != nil {
		serverError(w, "media delete failed", err)
		return
	}
	if deleted == nil {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}

	h.signedURLs.Remove(deleted.S3Key)
	if deleted.ThumbS3Key != nil {
		h.signedURLs.Remove(*deleted.ThumbS3Key)
	}

	// Clean up S3 objects (best-effort, don't fail the request).
	if h.storage != nil {
		ctx := r.Context()
		if err := h.storage.Delete(ctx, deleted.Bucket, deleted.S3Key); err != nil {
			slog.Warn("s3 original delete failed", "error", err, "key", deleted.S3Key)
		}
		if deleted.ThumbS3Key != nil {
			if err := h.storage.Delete(ctx, deleted.Bucket, *deleted.ThumbS3Key); err != nil {
				slog.Warn("s3 thumbnail delete failed", "error", err, "key", *deleted.ThumbS3Key)
			}
		}
	}

	writeMessage(w, http.StatusOK, "media deleted")
}

// Serve redirects to the file. Public files go to the direct S3 URL;
// private files get a time-limited signed URL.
func (h *Media) Serve(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid media id")
		return
	}

	m, err := h.media.FindByID(id)
	if err != nil {
		serverError(w, "media lookup failed", err)
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	if m.Bucket == h.storage.PublicBucket() {
		http.Redirect(w, r, h.storage.FileURL(m.S3Key), http.StatusFound)
		return
	}

	url, err := h.signedURL(r, m.Bucket, m.S3Key)
	if err != nil {
		slog.Error("presign failed", "error", err, "key", m.S3Key)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// generateThumbnail creates a JPEG thumbnail from an image, constrained
// to maxWidth while preserving aspect ratio. Returns nil if the image is
// already smaller than maxWidth.
func generateThumbnail(src io.Reader, maxWidth int) ([]byte, error) {
	// Decode config first to check dimensions without full decode.
	imgCfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Check for image bombs.
	if int64(imgCfg.Width)*int64(imgCfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", imgCfg.Width, imgCfg.Height, maxImagePixels)
	}

	// Skip thumbnail if image is already small enough.
	if imgCfg.Width <= maxWidth {
		return nil, nil
	}

	// Seek back to start for full decode.
	if seeker, ok := src.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek: %w", err)
		}
	} else {
		return nil, fmt.Errorf("source does not support seeking")
	}

	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	// Calculate thumbnail dimensions preserving aspect ratio.
	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	newWidth := maxWidth
	newHeight := int(float64(bounds.Dy()) * ratio)

	// Resize using CatmullRom (high quality).
	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}

// extensionFromType returns a file extension for known MIME types.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ""
	}
}
