package handlers_test

import (
	"DonationHub/internal/config"
	"DonationHub/internal/handlers"
	"DonationHub/internal/middleware"
	"DonationHub/internal/repo"
	"DonationHub/internal/service"
	"DonationHub/internal/storage"
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type testServer struct {
	router http.Handler
	cfg    *config.Config
	files  *storage.FileStore
	db     *sql.DB
}

// newTestServer собирает роутер поверх in-memory SQLite и FileStore во временной папке.
func newTestServer(t *testing.T, tweaks ...func(*config.Config)) *testServer {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	files, err := storage.NewFileStore(t.TempDir(), "/api/uploads")
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	cfg := &config.Config{
		AuthSecret:     testSecret,
		AdminEmails:    []string{"admin@example.com"},
		ImageMaxSizeMB: 1,
	}
	for _, tweak := range tweaks {
		tweak(cfg)
	}
	logger := zap.NewNop().Sugar()
	svc := service.NewDonationService(repo.NewDonationRepository(db), logger)
	h := handlers.NewHandler(svc, files, logger, cfg)
	return &testServer{router: h.Router, cfg: cfg, files: files, db: sqlDB}
}

func addAuth(t *testing.T, req *http.Request, email string) {
	t.Helper()
	tok, err := middleware.BuildJWTString(email, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("build token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
}

// do выполняет запрос; пустой email — анонимный запрос.
func (s *testServer) do(t *testing.T, req *http.Request, email string) *httptest.ResponseRecorder {
	t.Helper()
	if email != "" {
		addAuth(t, req, email)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func donationForm() url.Values {
	return url.Values{
		"name":        {"Ana"},
		"title":       {"Chaqueta"},
		"description": {"Chaqueta de invierno"},
		"category":    {"Ropa"},
		"condition":   {"Usado"},
		"city":        {" Cali "},
	}
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// makeMultipart собирает multipart-тело с полями и необязательным файлом image.
func makeMultipart(t *testing.T, form url.Values, filename string, file []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range form {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				t.Fatalf("write field: %v", err)
			}
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = fw.Write(file)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return m
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var l []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &l); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return l
}

// createDonation создаёт запись через API и возвращает её id.
func (s *testServer) createDonation(t *testing.T, email string, form url.Values) string {
	t.Helper()
	rr := s.do(t, formRequest(http.MethodPost, "/api/donations", form), email)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rr.Code, rr.Body.String())
	}
	return decodeMap(t, rr)["id"].(string)
}
