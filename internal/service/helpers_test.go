package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/courselab/activity-server-api/internal/models"
	"github.com/courselab/activity-server-api/internal/repository"
)

const sampleNotebook = `{"cells":[],"nbformat":4,"nbformat_minor":5}`

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Activity{}, &models.InstructorGrant{}, &models.Submission{}, &models.AuditLog{}))
	return db
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

type serviceDeps struct {
	db          *gorm.DB
	activities  repository.ActivityRepository
	grants      repository.InstructorGrantRepository
	submissions repository.SubmissionRepository
	audit       AuditRecorder
}

func newServiceDeps(t *testing.T) *serviceDeps {
	t.Helper()

	db := setupServiceDB(t)
	return &serviceDeps{
		db:          db,
		activities:  repository.NewActivityRepository(db),
		grants:      repository.NewInstructorGrantRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		audit:       NewAuditService(repository.NewAuditLogRepository(db), testLogger()),
	}
}

type fakeArtifactStore struct {
	uploads int
}

func (s *fakeArtifactStore) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	s.uploads++
	return "https://artifacts.test/" + name, nil
}

func makeNotebookHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("notebook", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File["notebook"][0]
}
