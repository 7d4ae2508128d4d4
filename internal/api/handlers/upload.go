package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Moderated-Gallery/Gallery-Service/internal/models"
	"github.com/Moderated-Gallery/Gallery-Service/internal/services"
	uploads "github.com/Moderated-Gallery/Gallery-Service/uploads/previews"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxUploadSize = 10 << 20 // 10 MiB per file
	maxBatchFiles = 10
)

// UploadImage accepts a single image (form field "image") with required
// title and uploadedBy fields. The record is created in pending state.
func (h *Handler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	uploadedBy := strings.TrimSpace(c.PostForm("uploadedBy"))
	if title == "" || uploadedBy == "" {
		respondError(c, http.StatusBadRequest, "Title and uploadedBy are required")
		return
	}

	if err := validateUpload(fileHeader); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	image, err := h.processUpload(fileHeader, title, c.PostForm("tags"), uploadedBy)
	if err != nil {
		log.Printf("[Upload] failed to process %s: %v", fileHeader.Filename, err)
		respondError(c, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	respondOK(c, http.StatusOK, image)
}

// UploadMultipleImages accepts up to 10 images (form field "images") with a
// shared uploadedBy and per-file title_<i> / tags_<i> fields. Validation is
// all-or-nothing: any oversized or non-image file fails the whole batch.
func (h *Handler) UploadMultipleImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "No files uploaded")
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		respondError(c, http.StatusBadRequest, "No files uploaded")
		return
	}
	if len(files) > maxBatchFiles {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("Too many files (max %d)", maxBatchFiles))
		return
	}

	uploadedBy := strings.TrimSpace(c.PostForm("uploadedBy"))
	if uploadedBy == "" {
		respondError(c, http.StatusBadRequest, "uploadedBy is required")
		return
	}

	for _, fileHeader := range files {
		if err := validateUpload(fileHeader); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	images := make([]models.Image, 0, len(files))
	for i, fileHeader := range files {
		title := strings.TrimSpace(c.PostForm("title_" + strconv.Itoa(i)))
		if title == "" {
			title = defaultTitle(fileHeader.Filename)
		}

		image, err := h.processUpload(fileHeader, title, c.PostForm("tags_"+strconv.Itoa(i)), uploadedBy)
		if err != nil {
			log.Printf("[Upload] failed to process %s: %v", fileHeader.Filename, err)
			respondError(c, http.StatusInternalServerError, "Failed to upload images")
			return
		}
		images = append(images, image)
	}

	respondOK(c, http.StatusOK, images)
}

// validateUpload enforces the boundary checks: declared media type must be an
// image and the file must not exceed the size ceiling.
func validateUpload(fileHeader *multipart.FileHeader) error {
	if !strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/") {
		return fmt.Errorf("Only image files are allowed: %s", fileHeader.Filename)
	}
	if fileHeader.Size > maxUploadSize {
		return fmt.Errorf("File too large (max 10MB): %s", fileHeader.Filename)
	}
	return nil
}

// processUpload stores the binary, generates a best-effort preview and
// creates the pending image record.
func (h *Handler) processUpload(fileHeader *multipart.FileHeader, title, rawTags, uploadedBy string) (models.Image, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	filename := storageFilename(fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")

	if err := h.blobs.Save(filename, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return models.Image{}, fmt.Errorf("failed to store file: %w", err)
	}

	// Preview generation is best-effort: a payload that only claims to be an
	// image simply gets no thumbnail.
	if preview, err := uploads.GenerateImagePreview(bytes.NewReader(data), filename, uploads.PreviewWidth); err == nil {
		if err := h.blobs.Save("previews/"+filename, bytes.NewReader(preview), int64(len(preview)), contentType); err != nil {
			log.Printf("[Upload] warning: failed to store preview for %s: %v", filename, err)
		}
	}

	image := h.store.Create(models.Image{
		URL:          "/uploads/" + filename,
		Filename:     filename,
		OriginalName: fileHeader.Filename,
		Title:        title,
		Status:       models.StatusPending,
		UploadedBy:   uploadedBy,
		UploadDate:   currentDate(),
		Tags:         parseTags(rawTags),
		FileSize:     formatFileSize(fileHeader.Size),
		Dimensions:   imageDimensions(),
		MimeType:     contentType,
	})

	h.publishEvent(services.SubjectImageUploaded, services.ImageEvent{
		ImageID:  image.ID,
		Action:   "uploaded",
		Actor:    uploadedBy,
		Filename: filename,
	})

	if h.cfg.ScanUploads {
		go services.ScanImage(h.store, h.blobs, h.cfg.ClamAVURL, image.ID, filename)
	}

	return image, nil
}

// storageFilename builds a collision-resistant name: time-based prefix,
// random suffix, original extension.
func storageFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	suffix := strings.SplitN(uuid.New().String(), "-", 2)[0]
	return fmt.Sprintf("image-%d-%s%s", time.Now().UnixMilli(), suffix, ext)
}

// parseTags resolves the loose tag input: a JSON-encoded array of strings,
// with malformed input degrading to an empty list instead of failing the
// upload.
func parseTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return []string{}
	}
	if tags == nil {
		return []string{}
	}
	return tags
}

// defaultTitle derives a title from the original filename: extension
// stripped, separators replaced by spaces.
func defaultTitle(originalName string) string {
	base := strings.TrimSuffix(originalName, filepath.Ext(originalName))
	return strings.NewReplacer("-", " ", "_", " ").Replace(base)
}

// formatFileSize renders a byte count the way the public API always has:
// powers of 1024, two decimals with trailing zeros trimmed.
func formatFileSize(size int64) string {
	if size == 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(size)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	value := float64(size) / math.Pow(1024, float64(i))
	value = math.Round(value*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + units[i]
}

// imageDimensions returns the placeholder dimension string. Real dimension
// inspection is deliberately not performed; clients treat this field as
// best-effort.
func imageDimensions() string {
	return "1920x1080"
}
