package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"skill-map/internal/api/handlers"
	"skill-map/internal/domain"
	"skill-map/internal/mapping"
	"skill-map/internal/store"
	"skill-map/internal/tabular"
)

type skillServiceMock struct{ mock.Mock }

func (m *skillServiceMock) List(q store.ListQuery) ([]domain.SkillRecord, error) {
	args := m.Called(q)
	recs, _ := args.Get(0).([]domain.SkillRecord)
	return recs, args.Error(1)
}

func (m *skillServiceMock) Update(workdaySkill, lightcastSkill string) (int, error) {
	args := m.Called(workdaySkill, lightcastSkill)
	return args.Int(0), args.Error(1)
}

func (m *skillServiceMock) Delete(remoteSkillID, workdaySkill string) (int, error) {
	args := m.Called(remoteSkillID, workdaySkill)
	return args.Int(0), args.Error(1)
}

func (m *skillServiceMock) ListLightcastReady(remoteSkillID, workdaySkill string) ([]domain.SkillRecord, error) {
	args := m.Called(remoteSkillID, workdaySkill)
	recs, _ := args.Get(0).([]domain.SkillRecord)
	return recs, args.Error(1)
}

type normalizerMock struct{ mock.Mock }

func (m *normalizerMock) NormalizeFile(ctx context.Context, path string) ([]domain.SkillRecord, error) {
	args := m.Called(ctx, path)
	recs, _ := args.Get(0).([]domain.SkillRecord)
	return recs, args.Error(1)
}

type builderMock struct{ mock.Mock }

func (m *builderMock) Build(ctx context.Context) ([]domain.CourseMappingRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]domain.CourseMappingRow)
	return rows, args.Error(1)
}

type listerMock struct{ mock.Mock }

func (m *listerMock) List(q mapping.ListQuery) ([]domain.CourseMappingRow, error) {
	args := m.Called(q)
	rows, _ := args.Get(0).([]domain.CourseMappingRow)
	return rows, args.Error(1)
}

type publisherMock struct{ mock.Mock }

func (m *publisherMock) Publish(ctx context.Context, localPath, remoteFileName string) (string, error) {
	args := m.Called(ctx, localPath, remoteFileName)
	return args.String(0), args.Error(1)
}

type fixture struct {
	app       *fiber.App
	dir       string
	skills    *skillServiceMock
	norm      *normalizerMock
	builder   *builderMock
	lister    *listerMock
	publisher *publisherMock
}

func (f *fixture) skillsXLSX() string  { return filepath.Join(f.dir, "normalized_skills.xlsx") }
func (f *fixture) mappingXLSX() string { return filepath.Join(f.dir, "coursera_mapped_skills.xlsx") }

func newFixture(t *testing.T, origins ...string) *fixture {
	t.Helper()
	logger := log.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		dir:       t.TempDir(),
		skills:    &skillServiceMock{},
		norm:      &normalizerMock{},
		builder:   &builderMock{},
		lister:    &listerMock{},
		publisher: &publisherMock{},
	}
	f.app = New(origins, logger)
	Register(f.app,
		handlers.NewHealthHandler(),
		handlers.NewProcessHandler(f.norm, f.dir, f.skillsXLSX()),
		handlers.NewSkillsHandler(f.skills, f.skillsXLSX(), f.dir),
		handlers.NewCourseraHandler(f.builder, f.lister, f.publisher, f.mappingXLSX(), f.dir),
	)
	t.Cleanup(func() {
		f.skills.AssertExpectations(t)
		f.norm.AssertExpectations(t)
		f.builder.AssertExpectations(t)
		f.lister.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, body
}

func detail(t *testing.T, body []byte) string {
	t.Helper()
	var e struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Detail
}

func writeSkillsXLSX(t *testing.T, path string, records ...domain.SkillRecord) {
	t.Helper()
	require.NoError(t, tabular.WriteXLSXFile(path, domain.SkillColumns, store.SkillRows(records)))
}

func assertSpreadsheet(t *testing.T, resp *http.Response, filename string) {
	t.Helper()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, tabular.XLSXContentType, resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), filename)
}

var pythonRecord = domain.SkillRecord{
	RemoteSkillID:    "1",
	WorkdaySkill:     "python programming",
	LightcastSkill:   "Python (Programming Language)",
	LightcastSkillID: "KS1200364C9C1LK3V5Q1",
	Status:           domain.StatusSuccess,
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Cannot GET /nope", detail(t, body))
}

func TestListSkills(t *testing.T) {
	f := newFixture(t)
	f.skills.On("List", store.ListQuery{WorkdaySkill: "python"}).
		Return([]domain.SkillRecord{pythonRecord}, nil).Once()

	resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/skills?workday_skill=python", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []domain.SkillRecord
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, []domain.SkillRecord{pythonRecord}, got)
}

func TestListSkillsErrors(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "not found",
			err:        store.NotFoundf("remote_skill_id '9' not found"),
			wantStatus: http.StatusNotFound,
			wantDetail: "remote_skill_id '9' not found",
		},
		{
			name:       "unexpected",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "disk on fire",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.skills.On("List", store.ListQuery{RemoteSkillID: "9"}).Return(nil, tc.err).Once()

			resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/skills?remote_skill_id=9", nil))
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Equal(t, tc.wantDetail, detail(t, body))
		})
	}
}

func TestUpdateSkill(t *testing.T) {
	f := newFixture(t)
	writeSkillsXLSX(t, f.skillsXLSX(), pythonRecord)
	f.skills.On("Update", "python programming", "Python (Programming Language)").Return(1, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/skills/update",
		strings.NewReader(`{"workday_skill":"python programming","lightcast_skill":"Python (Programming Language)"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, body := f.do(t, req)
	assertSpreadsheet(t, resp, "normalized_skills.xlsx")

	tbl, err := tabular.ReadXLSX(bytes.NewReader(body))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "Python (Programming Language)", tbl.Rows[0]["lightcast_skill"])
}

func TestUpdateSkillErrors(t *testing.T) {
	t.Run("bad body", func(t *testing.T) {
		f := newFixture(t)
		req := httptest.NewRequest(http.MethodPut, "/skills/update", strings.NewReader(`{`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, body := f.do(t, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid request body", detail(t, body))
	})

	t.Run("missing workday skill", func(t *testing.T) {
		f := newFixture(t)
		f.skills.On("Update", "", "X").Return(0, store.Invalidf("workday_skill is required")).Once()
		req := httptest.NewRequest(http.MethodPut, "/skills/update", strings.NewReader(`{"lightcast_skill":"X"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, body := f.do(t, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "workday_skill is required", detail(t, body))
	})

	t.Run("missing lightcast skill", func(t *testing.T) {
		f := newFixture(t)
		req := httptest.NewRequest(http.MethodPut, "/skills/update", strings.NewReader(`{"workday_skill":"python"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, body := f.do(t, req)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "lightcast_skill is required", detail(t, body))
		f.skills.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown workday skill", func(t *testing.T) {
		f := newFixture(t)
		f.skills.On("Update", "cobol", "COBOL").Return(0, store.NotFoundf("Workday skill not found")).Once()
		req := httptest.NewRequest(http.MethodPut, "/skills/update",
			strings.NewReader(`{"workday_skill":"cobol","lightcast_skill":"COBOL"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, _ := f.do(t, req)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteSkill(t *testing.T) {
	f := newFixture(t)
	writeSkillsXLSX(t, f.skillsXLSX())
	f.skills.On("Delete", "1", "").Return(1, nil).Once()

	resp, _ := f.do(t, httptest.NewRequest(http.MethodDelete, "/skills/delete?remote_skill_id=1", nil))
	assertSpreadsheet(t, resp, "normalized_skills.xlsx")
}

func TestDeleteSkillWithoutSelector(t *testing.T) {
	f := newFixture(t)
	f.skills.On("Delete", "", "").
		Return(0, store.Invalidf("Either remote_skill_id or workday_skill must be provided")).Once()

	resp, body := f.do(t, httptest.NewRequest(http.MethodDelete, "/skills/delete", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Either remote_skill_id or workday_skill must be provided", detail(t, body))
}

func TestLightcastReady(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		f := newFixture(t)
		f.skills.On("ListLightcastReady", "", "python").Return([]domain.SkillRecord{pythonRecord}, nil).Once()

		resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/skills/lightcast-ready?workday_skill=python", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got []domain.SkillRecord
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Len(t, got, 1)
	})

	t.Run("download", func(t *testing.T) {
		f := newFixture(t)
		f.skills.On("ListLightcastReady", "", "").Return([]domain.SkillRecord{pythonRecord}, nil).Once()

		resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/skills/lightcast-ready?download=true", nil))
		assertSpreadsheet(t, resp, "lightcast_ready_skills.xlsx")
		assert.FileExists(t, filepath.Join(f.dir, "lightcast_ready_skills.xlsx"))

		tbl, err := tabular.ReadXLSX(bytes.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, domain.SkillColumns, tbl.Header)
		require.Len(t, tbl.Rows, 1)
		assert.Equal(t, "KS1200364C9C1LK3V5Q1", tbl.Rows[0]["lightcast_skill_id"])
	})

	t.Run("nothing ready", func(t *testing.T) {
		f := newFixture(t)
		f.skills.On("ListLightcastReady", "", "").
			Return(nil, store.NotFoundf("No records with valid lightcast_skill found")).Once()

		resp, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/skills/lightcast-ready", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func multipartUpload(t *testing.T, field, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/process/lightcast", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func TestProcessLightcast(t *testing.T) {
	f := newFixture(t)
	writeSkillsXLSX(t, f.skillsXLSX(), pythonRecord)

	var uploaded string
	f.norm.On("NormalizeFile", mock.Anything, mock.MatchedBy(func(p string) bool {
		return filepath.Dir(p) == f.dir && filepath.Ext(p) == ".csv"
	})).Run(func(args mock.Arguments) {
		uploaded = args.String(1)
	}).Return([]domain.SkillRecord{pythonRecord}, nil).Once()

	resp, _ := f.do(t, multipartUpload(t, "file", "Skills.CSV", "remote_skill_id,skill_name\n1,python programming\n"))
	assertSpreadsheet(t, resp, "normalized_skills.xlsx")

	b, err := os.ReadFile(uploaded)
	require.NoError(t, err)
	assert.Contains(t, string(b), "python programming")
}

func TestProcessLightcastErrors(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		f := newFixture(t)
		resp, body := f.do(t, multipartUpload(t, "", "", ""))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "file is required (csv or xlsx)", detail(t, body))
	})

	t.Run("unsupported format", func(t *testing.T) {
		f := newFixture(t)
		f.norm.On("NormalizeFile", mock.Anything, mock.Anything).
			Return(nil, store.Invalidf("Unsupported file format. Upload CSV or Excel.")).Once()

		resp, body := f.do(t, multipartUpload(t, "file", "skills.pdf", "%PDF"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Unsupported file format. Upload CSV or Excel.", detail(t, body))
	})

	t.Run("token failure", func(t *testing.T) {
		f := newFixture(t)
		f.norm.On("NormalizeFile", mock.Anything, mock.Anything).
			Return(nil, errors.New("lightcast: token: status=401")).Once()

		resp, _ := f.do(t, multipartUpload(t, "file", "skills.csv", "skill_name\nx\n"))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

var mappedRow = domain.CourseMappingRow{
	RemoteSkillID:     "1",
	WorkdaySkill:      "python programming",
	LightcastSkill:    "Python (Programming Language)",
	SearchSkillUsed:   "Python (Programming Language)",
	SearchSkillSource: domain.SourceLightcast,
	CourseName:        "Python for Everybody",
	CourseSlug:        "python",
	CourseLink:        "https://www.coursera.org/learn/python",
	CourseSkills:      "Data Structures, Python Programming",
}

func TestProcessCoursera(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		f := newFixture(t)
		f.builder.On("Build", mock.Anything).Run(func(mock.Arguments) {
			require.NoError(t, tabular.WriteXLSXFile(f.mappingXLSX(), domain.MappingColumns, [][]string{mappedRow.Values()}))
		}).Return([]domain.CourseMappingRow{mappedRow}, nil).Once()

		resp, body := f.do(t, httptest.NewRequest(http.MethodPost, "/process/coursera", nil))
		assertSpreadsheet(t, resp, "coursera_mapped_skills.xlsx")

		tbl, err := tabular.ReadXLSX(bytes.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, domain.MappingColumns, tbl.Header)
	})

	t.Run("no courses", func(t *testing.T) {
		f := newFixture(t)
		f.builder.On("Build", mock.Anything).Return(nil, store.NotFoundf("No Coursera courses found")).Once()

		resp, body := f.do(t, httptest.NewRequest(http.MethodPost, "/process/coursera", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "No Coursera courses found", detail(t, body))
	})
}

func TestMappedSkills(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		f := newFixture(t)
		f.lister.On("List", mapping.ListQuery{LightcastSkill: "python"}).
			Return([]domain.CourseMappingRow{mappedRow}, nil).Once()

		resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/coursera/mapped-skills?lightcast_skill=python", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got []domain.CourseMappingRow
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, []domain.CourseMappingRow{mappedRow}, got)
	})

	t.Run("download", func(t *testing.T) {
		f := newFixture(t)
		f.lister.On("List", mapping.ListQuery{RemoteSkillID: "1"}).
			Return([]domain.CourseMappingRow{mappedRow}, nil).Once()

		resp, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/coursera/mapped-skills?remote_skill_id=1&download=true", nil))
		assertSpreadsheet(t, resp, "coursera_mapped_filtered.xlsx")
		assert.FileExists(t, filepath.Join(f.dir, "coursera_mapped_filtered.xlsx"))
	})

	t.Run("no mapping yet", func(t *testing.T) {
		f := newFixture(t)
		f.lister.On("List", mapping.ListQuery{}).
			Return(nil, store.NotFoundf("Coursera mapping file not found. Run /process/coursera first")).Once()

		resp, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/coursera/mapped-skills", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestPublish(t *testing.T) {
	t.Run("no mapping yet", func(t *testing.T) {
		f := newFixture(t)

		resp, body := f.do(t, httptest.NewRequest(http.MethodPost, "/coursera/publish", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Coursera mapping file not found. Run /process/coursera first", detail(t, body))
	})

	t.Run("ok", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, tabular.WriteXLSXFile(f.mappingXLSX(), domain.MappingColumns, nil))
		f.publisher.On("Publish", mock.Anything, f.mappingXLSX(), "coursera_mapped_skills.xlsx").
			Return("/inbound/coursera_mapped_skills.xlsx", nil).Once()

		resp, body := f.do(t, httptest.NewRequest(http.MethodPost, "/coursera/publish", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"remote_path":"/inbound/coursera_mapped_skills.xlsx"}`, string(body))
	})
}

func TestCORS(t *testing.T) {
	f := newFixture(t, "http://localhost:3000")

	req := httptest.NewRequest(http.MethodOptions, "/skills", nil)
	req.Header.Set(fiber.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodGet)

	resp, _ := f.do(t, req)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", resp.Header.Get(fiber.HeaderAccessControlAllowCredentials))
}

func TestCORSUnknownOrigin(t *testing.T) {
	f := newFixture(t, "http://localhost:3000")
	f.skills.On("List", store.ListQuery{}).Return([]domain.SkillRecord{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/skills", nil)
	req.Header.Set(fiber.HeaderOrigin, "http://evil.example")

	resp, _ := f.do(t, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}

func TestRecoverFromPanic(t *testing.T) {
	f := newFixture(t)
	f.skills.On("List", store.ListQuery{}).Run(func(mock.Arguments) { panic("boom") }).Return(nil, nil).Once()

	resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/skills", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "boom", detail(t, body))
}
