package http

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"plate-slip-service/internal/config"
	"plate-slip-service/internal/domain/plate"
	"plate-slip-service/internal/render"
	"plate-slip-service/internal/service"
	"plate-slip-service/internal/storage"
)

type fakeLocator struct {
	candidates []plate.Candidate
}

func (f *fakeLocator) Detect(ctx context.Context, imageData []byte) ([]plate.Candidate, error) {
	return f.candidates, nil
}

type fakeRecognizer struct {
	spans []plate.TextSpan
}

func (f *fakeRecognizer) Recognize(ctx context.Context, region image.Image) ([]plate.TextSpan, error) {
	return f.spans, nil
}

func newTestRouter(t *testing.T, locator service.Locator, recognizer service.Recognizer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := &config.Config{
		Environment: "test",
		Detector:    config.DetectorConfig{Selection: plate.SelectFirst},
		Slip:        config.SlipConfig{Dir: dir, Fee: "Rs. 30.00"},
		CropPadding: 4,
	}

	store, err := storage.NewArtifactStore(dir)
	require.NoError(t, err)

	renderer := render.NewSlipRenderer(cfg.Slip, zerolog.Nop())
	svc := service.NewPlateService(locator, recognizer, renderer, store, nil, cfg, zerolog.Nop())
	handler := NewHandler(svc, store, zerolog.Nop())

	return NewRouter(handler, cfg.Environment, store, zerolog.Nop())
}

func multipartImage(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, "upload.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), imaging.PNG))
	return buf.Bytes()
}

func TestRecognizeMissingUpload(t *testing.T) {
	router := newTestRouter(t, &fakeLocator{}, &fakeRecognizer{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plates/recognize", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body, "error")
}

func TestRecognizeUndecodableUpload(t *testing.T) {
	router := newTestRouter(t, &fakeLocator{}, &fakeRecognizer{})

	buf, contentType := multipartImage(t, "image", []byte("not an image"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plates/recognize", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecognizeNoPlateIsSuccess(t *testing.T) {
	router := newTestRouter(t, &fakeLocator{}, &fakeRecognizer{})

	buf, contentType := multipartImage(t, "image", pngBytes(t, 100, 60))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plates/recognize", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Absence of a plate is reported with a success status.
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, noPlateMessage, body["error"])
}

func TestRecognizeHappyPath(t *testing.T) {
	locator := &fakeLocator{candidates: []plate.Candidate{
		{Box: plate.BoundingBox{X1: 10, Y1: 10, X2: 60, Y2: 40}, Confidence: 0.8},
	}}
	recognizer := &fakeRecognizer{spans: []plate.TextSpan{{Text: "ABC 123", Confidence: 0.9}}}
	router := newTestRouter(t, locator, recognizer)

	buf, contentType := multipartImage(t, "image", pngBytes(t, 100, 60))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plates/recognize", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ABC123", body["plate"])
	require.Equal(t, string(plate.ReadingOK), body["reading_code"])
	require.Equal(t, "Rs. 30.00", body["fee"])
	require.NotEmpty(t, body["entry_time"])
	require.Contains(t, body["slip_url"], "/static/slips/slip_ABC123_")
	require.Equal(t, "/static/slips/annotated_latest.jpg", body["anno_url"])
	require.Equal(t, "/static/slips/crop_latest.jpg", body["crop_url"])

	// The generated slip is served back by the artifact endpoint.
	slipReq := httptest.NewRequest(http.MethodGet, body["slip_url"].(string), nil)
	slipRec := httptest.NewRecorder()
	router.ServeHTTP(slipRec, slipReq)
	require.Equal(t, http.StatusOK, slipRec.Code)
	require.NotZero(t, slipRec.Body.Len())
}

func TestServeArtifactRejectsBadNames(t *testing.T) {
	router := newTestRouter(t, &fakeLocator{}, &fakeRecognizer{})

	req := httptest.NewRequest(http.MethodGet, "/static/slips/..%2Fescape.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.NotEqual(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/static/slips/missing.png", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, &fakeLocator{}, &fakeRecognizer{})

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}
