package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Moderated-Gallery/Gallery-Service/internal/api"
	"github.com/Moderated-Gallery/Gallery-Service/internal/api/handlers"
	"github.com/Moderated-Gallery/Gallery-Service/internal/configuration"
	"github.com/Moderated-Gallery/Gallery-Service/internal/models"
	"github.com/Moderated-Gallery/Gallery-Service/internal/storage"
	"github.com/Moderated-Gallery/Gallery-Service/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminToken = "demo-admin-token"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	router *gin.Engine
	store  *store.ImageStore
	cfg    *configuration.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := &configuration.Config{
		Server: configuration.ServerConfig{Port: "8080"},
		Storage: configuration.StorageConfig{
			Backend:   "local",
			DataFile:  filepath.Join(dir, "images.json"),
			UploadDir: filepath.Join(dir, "uploads"),
		},
		Admin: configuration.AdminConfig{
			Username: "admin",
			Password: "password123",
			Token:    adminToken,
		},
	}

	imageStore := store.New(store.NewFileBackend(cfg.Storage.DataFile))
	blobs, err := storage.NewLocalStorage(cfg.Storage.UploadDir)
	require.NoError(t, err)

	router := gin.New()
	api.RegisterRoutes(router, handlers.New(cfg, imageStore, blobs, nil), cfg.Admin.Token)

	return &testServer{router: router, store: imageStore, cfg: cfg}
}

func (ts *testServer) do(t *testing.T, method, path string, body *bytes.Buffer, contentType string, admin bool) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+adminToken)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (ts *testServer) doJSON(t *testing.T, method, path string, payload interface{}, admin bool) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return ts.do(t, method, path, bytes.NewBuffer(data), "application/json", admin)
}

// pngBytes returns a small valid PNG so preview generation has something to
// decode.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

type filePart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, parts ...filePart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, p.field, p.filename))
		h.Set("Content-Type", p.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (ts *testServer) uploadImage(t *testing.T, title, uploadedBy string) models.Image {
	t.Helper()
	body, contentType := multipartBody(t,
		map[string]string{"title": title, "uploadedBy": uploadedBy},
		filePart{"image", "photo.png", "image/png", pngBytes(t)},
	)
	w, env := ts.do(t, http.MethodPost, "/api/upload", body, contentType, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var img models.Image
	require.NoError(t, json.Unmarshal(env.Data, &img))
	return img
}

// --- Auth ---

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.doJSON(t, http.MethodPost, "/api/auth/login",
		models.LoginRequest{Username: "admin", Password: "password123"}, false)
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, adminToken, data.Token)

	w, env = ts.doJSON(t, http.MethodPost, "/api/auth/login",
		models.LoginRequest{Username: "admin", Password: "wrong"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", env.Error)

	w, _ = ts.doJSON(t, http.MethodPost, "/api/auth/login",
		models.LoginRequest{Username: "admin"}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Upload ---

func TestUploadCreatesPendingRecord(t *testing.T) {
	ts := newTestServer(t)

	img := ts.uploadImage(t, "Sunset", "Alice")
	assert.Equal(t, 1, img.ID)
	assert.Equal(t, models.StatusPending, img.Status)
	assert.Equal(t, "Sunset", img.Title)
	assert.Equal(t, "Alice", img.UploadedBy)
	assert.Equal(t, []string{}, img.Tags)
	assert.Equal(t, "photo.png", img.OriginalName)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, "/uploads/"+img.Filename, img.URL)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), img.UploadDate)
	assert.Empty(t, img.ApprovedBy)

	// Binary and preview land in the content root
	_, err := os.Stat(filepath.Join(ts.cfg.Storage.UploadDir, img.Filename))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(ts.cfg.Storage.UploadDir, "previews", img.Filename))
	assert.NoError(t, err)
}

func TestUploadValidation(t *testing.T) {
	ts := newTestServer(t)

	// No file at all
	body, contentType := multipartBody(t, map[string]string{"title": "x", "uploadedBy": "Alice"})
	w, env := ts.do(t, http.MethodPost, "/api/upload", body, contentType, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file uploaded", env.Error)

	// Missing title and uploadedBy
	body, contentType = multipartBody(t, nil, filePart{"image", "a.png", "image/png", pngBytes(t)})
	w, env = ts.do(t, http.MethodPost, "/api/upload", body, contentType, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title and uploadedBy are required", env.Error)

	// Declared media type is not an image
	body, contentType = multipartBody(t,
		map[string]string{"title": "x", "uploadedBy": "Alice"},
		filePart{"image", "notes.txt", "text/plain", []byte("hello")},
	)
	w, _ = ts.do(t, http.MethodPost, "/api/upload", body, contentType, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadTagsParsing(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := multipartBody(t,
		map[string]string{"title": "Tagged", "uploadedBy": "Alice", "tags": `["Sunset","beach"]`},
		filePart{"image", "a.png", "image/png", pngBytes(t)},
	)
	w, env := ts.do(t, http.MethodPost, "/api/upload", body, contentType, false)
	require.Equal(t, http.StatusOK, w.Code)
	var img models.Image
	require.NoError(t, json.Unmarshal(env.Data, &img))
	assert.Equal(t, []string{"Sunset", "beach"}, img.Tags)

	// Malformed tags degrade to empty rather than failing the upload
	body, contentType = multipartBody(t,
		map[string]string{"title": "Tagged", "uploadedBy": "Alice", "tags": "{{broken"},
		filePart{"image", "a.png", "image/png", pngBytes(t)},
	)
	w, env = ts.do(t, http.MethodPost, "/api/upload", body, contentType, false)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &img))
	assert.Equal(t, []string{}, img.Tags)
}

func TestUploadMultiple(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := multipartBody(t,
		map[string]string{
			"uploadedBy": "Alice",
			"title_0":    "First",
			"tags_1":     `["city"]`,
		},
		filePart{"images", "one.png", "image/png", pngBytes(t)},
		filePart{"images", "city-at-night.png", "image/png", pngBytes(t)},
	)
	w, env := ts.do(t, http.MethodPost, "/api/upload/multiple", body, contentType, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var images []models.Image
	require.NoError(t, json.Unmarshal(env.Data, &images))
	require.Len(t, images, 2)
	assert.Equal(t, "First", images[0].Title)
	// Missing per-file title falls back to the cleaned original name
	assert.Equal(t, "city at night", images[1].Title)
	assert.Equal(t, []string{"city"}, images[1].Tags)
	assert.Greater(t, images[1].ID, images[0].ID)
}

func TestUploadMultipleRequiresFiles(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{"uploadedBy": "Alice"})
	w, env := ts.do(t, http.MethodPost, "/api/upload/multiple", body, contentType, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No files uploaded", env.Error)

	body, contentType = multipartBody(t, nil, filePart{"images", "a.png", "image/png", pngBytes(t)})
	w, env = ts.do(t, http.MethodPost, "/api/upload/multiple", body, contentType, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "uploadedBy is required", env.Error)
}

// --- Moderation ---

func TestModerationLifecycle(t *testing.T) {
	ts := newTestServer(t)
	img := ts.uploadImage(t, "Sunset", "Alice")
	today := time.Now().UTC().Format("2006-01-02")

	// Approve
	w, env := ts.doJSON(t, http.MethodPost, fmt.Sprintf("/api/admin/images/%d/approve", img.ID),
		models.ApproveRequest{ApprovedBy: "Bob"}, true)
	require.Equal(t, http.StatusOK, w.Code)
	var approved models.Image
	require.NoError(t, json.Unmarshal(env.Data, &approved))
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.Equal(t, "Bob", approved.ApprovedBy)
	assert.Equal(t, today, approved.ApprovedDate)

	// Reject the same record, omitting the reason
	w, env = ts.doJSON(t, http.MethodPost, fmt.Sprintf("/api/admin/images/%d/reject", img.ID),
		models.RejectRequest{RejectedBy: "Carol"}, true)
	require.Equal(t, http.StatusOK, w.Code)
	var rejected models.Image
	require.NoError(t, json.Unmarshal(env.Data, &rejected))
	assert.Equal(t, models.StatusRejected, rejected.Status)
	assert.Equal(t, "Carol", rejected.RejectedBy)
	assert.Equal(t, "Content policy violation", rejected.RejectionReason)
	assert.Empty(t, rejected.ApprovedBy)

	// Delete, then verify it is gone
	w, env = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/images/%d", img.ID), nil, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var deleted struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &deleted))
	assert.Equal(t, img.ID, deleted.ID)

	w, _ = ts.do(t, http.MethodGet, fmt.Sprintf("/api/images/%d", img.ID), nil, "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, err := os.Stat(filepath.Join(ts.cfg.Storage.UploadDir, img.Filename))
	assert.True(t, os.IsNotExist(err))
}

func TestModerationRequiresAdminToken(t *testing.T) {
	ts := newTestServer(t)
	img := ts.uploadImage(t, "Sunset", "Alice")

	w, env := ts.doJSON(t, http.MethodPost, fmt.Sprintf("/api/admin/images/%d/approve", img.ID),
		models.ApproveRequest{ApprovedBy: "Bob"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", env.Error)

	w, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/images/%d", img.ID), nil, "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestModerationValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	img := ts.uploadImage(t, "Sunset", "Alice")

	w, env := ts.doJSON(t, http.MethodPost, "/api/admin/images/abc/approve",
		models.ApproveRequest{ApprovedBy: "Bob"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid image ID", env.Error)

	w, env = ts.doJSON(t, http.MethodPost, fmt.Sprintf("/api/admin/images/%d/approve", img.ID),
		models.ApproveRequest{}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "approvedBy is required", env.Error)

	w, env = ts.doJSON(t, http.MethodPost, "/api/admin/images/9999/approve",
		models.ApproveRequest{ApprovedBy: "Bob"}, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Image not found", env.Error)

	w, env = ts.doJSON(t, http.MethodPost, fmt.Sprintf("/api/admin/images/%d/reject", img.ID),
		models.RejectRequest{}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "rejectedBy is required", env.Error)

	w, _ = ts.do(t, http.MethodDelete, "/api/admin/images/9999", nil, "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Listing, filtering and visibility ---

func seedModerated(t *testing.T, ts *testServer) (pending, approved, rejected models.Image) {
	t.Helper()
	pending = ts.uploadImage(t, "Pending beach", "Alice")
	approved = ts.uploadImage(t, "Approved sunset", "Alice")
	rejected = ts.uploadImage(t, "Rejected city", "Bob")

	var err error
	approved, err = ts.store.Approve(approved.ID, "Mod")
	require.NoError(t, err)
	rejected, err = ts.store.Reject(rejected.ID, "Mod", "no")
	require.NoError(t, err)
	return pending, approved, rejected
}

func TestAnonymousCallersOnlySeeApproved(t *testing.T) {
	ts := newTestServer(t)
	_, approved, _ := seedModerated(t, ts)

	w, env := ts.do(t, http.MethodGet, "/api/images", nil, "", false)
	require.Equal(t, http.StatusOK, w.Code)
	var images []models.Image
	require.NoError(t, json.Unmarshal(env.Data, &images))
	require.Len(t, images, 1)
	assert.Equal(t, approved.ID, images[0].ID)

	// Explicitly asking for pending yields nothing without the admin token
	w, env = ts.do(t, http.MethodGet, "/api/images/status/pending", nil, "", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &images))
	assert.Empty(t, images)
}

func TestAdminSeesAllStatuses(t *testing.T) {
	ts := newTestServer(t)
	pending, _, rejected := seedModerated(t, ts)

	w, env := ts.do(t, http.MethodGet, "/api/images", nil, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var images []models.Image
	require.NoError(t, json.Unmarshal(env.Data, &images))
	assert.Len(t, images, 3)

	w, env = ts.do(t, http.MethodGet, "/api/images/status/pending", nil, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &images))
	require.Len(t, images, 1)
	assert.Equal(t, pending.ID, images[0].ID)

	w, env = ts.do(t, http.MethodGet, "/api/images/status/rejected", nil, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &images))
	require.Len(t, images, 1)
	assert.Equal(t, rejected.ID, images[0].ID)
}

func TestInvalidStatusRejected(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodGet, "/api/images/status/published", nil, "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid status", env.Error)
}

func TestSearchComposesWithStatus(t *testing.T) {
	ts := newTestServer(t)
	_, approved, _ := seedModerated(t, ts)

	// Case-insensitive title match, narrowed to approved for anonymous callers
	w, env := ts.do(t, http.MethodGet, "/api/images?search=SUNSET", nil, "", false)
	require.Equal(t, http.StatusOK, w.Code)
	var images []models.Image
	require.NoError(t, json.Unmarshal(env.Data, &images))
	require.Len(t, images, 1)
	assert.Equal(t, approved.ID, images[0].ID)

	// "beach" only matches the pending record, invisible to anonymous callers
	w, env = ts.do(t, http.MethodGet, "/api/images?search=beach", nil, "", false)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &images))
	assert.Empty(t, images)

	// Admin search over an explicit status bucket
	w, env = ts.do(t, http.MethodGet, "/api/images/status/pending?search=beach", nil, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &images))
	assert.Len(t, images, 1)
}

func TestSearchMatchesTags(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := multipartBody(t,
		map[string]string{"title": "Untitled", "uploadedBy": "Alice", "tags": `["Golden-Hour"]`},
		filePart{"image", "a.png", "image/png", pngBytes(t)},
	)
	w, env := ts.do(t, http.MethodPost, "/api/upload", body, contentType, false)
	require.Equal(t, http.StatusOK, w.Code)
	var img models.Image
	require.NoError(t, json.Unmarshal(env.Data, &img))

	w, env = ts.do(t, http.MethodGet, "/api/images?search=golden", nil, "", true)
	require.Equal(t, http.StatusOK, w.Code)
	var images []models.Image
	require.NoError(t, json.Unmarshal(env.Data, &images))
	require.Len(t, images, 1)
	assert.Equal(t, img.ID, images[0].ID)
}

func TestGetImage(t *testing.T) {
	ts := newTestServer(t)
	img := ts.uploadImage(t, "Sunset", "Alice")

	w, env := ts.do(t, http.MethodGet, fmt.Sprintf("/api/images/%d", img.ID), nil, "", false)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Image
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, img.ID, got.ID)

	w, env = ts.do(t, http.MethodGet, "/api/images/abc", nil, "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid image ID", env.Error)

	w, env = ts.do(t, http.MethodGet, "/api/images/9999", nil, "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Image not found", env.Error)
}

func TestServeUpload(t *testing.T) {
	ts := newTestServer(t)
	img := ts.uploadImage(t, "Sunset", "Alice")

	w, _ := ts.do(t, http.MethodGet, img.URL, nil, "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())

	w, _ = ts.do(t, http.MethodGet, "/uploads/previews/"+img.Filename, nil, "", false)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = ts.do(t, http.MethodGet, "/uploads/missing.png", nil, "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Restarting the service over the same data file keeps every record and
// never reuses an id.
func TestStateSurvivesRestart(t *testing.T) {
	ts := newTestServer(t)
	img := ts.uploadImage(t, "Sunset", "Alice")
	_, err := ts.store.Approve(img.ID, "Bob")
	require.NoError(t, err)

	reloaded := store.New(store.NewFileBackend(ts.cfg.Storage.DataFile))
	got, ok := reloaded.Get(img.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusApproved, got.Status)

	next := reloaded.Create(models.Image{Title: "Later", Status: models.StatusPending})
	assert.Greater(t, next.ID, img.ID)
}
