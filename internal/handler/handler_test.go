package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-rotation/internal/middleware"
	"github.com/stemsi/exstem-rotation/internal/model"
	"github.com/stemsi/exstem-rotation/internal/response"
	"github.com/stemsi/exstem-rotation/internal/rotation"
	"github.com/stemsi/exstem-rotation/internal/service"
	"github.com/stemsi/exstem-rotation/internal/validator"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validator.Setup()
	m.Run()
}

type fakeSelector struct {
	got      rotation.Request
	attempts int
	err      error
}

func (f *fakeSelector) Select(_ context.Context, testID uuid.UUID, req rotation.Request) (*model.Selection, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &model.Selection{
		TestID:        testID,
		BaseSeed:      req.BaseSeed,
		AttemptNumber: req.AttemptNumber,
		UserSourcedID: req.UserSourcedID,
		Identifiers:   []string{"q1", "q2"},
	}, nil
}

func (f *fakeSelector) Preview(_ context.Context, testID uuid.UUID, req rotation.Request, attempts int) (*model.Preview, error) {
	f.got = req
	f.attempts = attempts
	if f.err != nil {
		return nil, f.err
	}
	return &model.Preview{TestID: testID}, nil
}

type fakeCounter struct{ next int }

func (f *fakeCounter) Next(context.Context, uuid.UUID, string, string) (int, error) {
	f.next++
	return f.next, nil
}

type fakeAssessments struct {
	err      error
	replaced *model.ReplaceQuestionsRequest
}

func (f *fakeAssessments) Import(_ context.Context, req model.ImportTestRequest) (*model.AssessmentTest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.AssessmentTest{ID: uuid.New(), Identifier: "t1", Title: req.Title}, nil
}

func (f *fakeAssessments) Get(_ context.Context, testID uuid.UUID) (*model.AssessmentTest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.AssessmentTest{ID: testID, Identifier: "t1"}, nil
}

func (f *fakeAssessments) ReplaceQuestions(_ context.Context, _ uuid.UUID, req model.ReplaceQuestionsRequest) error {
	f.replaced = &req
	return f.err
}

type fixture struct {
	router    *gin.Engine
	selector  *fakeSelector
	counter   *fakeCounter
	assess    *fakeAssessments
	student   string
	admin     string
	testIDURL string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	auth := service.NewAuthService("test-secret")
	student, err := auth.IssueToken(service.TokenTypeStudent, "learner-1", time.Hour)
	require.NoError(t, err)
	admin, err := auth.IssueToken(service.TokenTypeAdmin, "admin-1", time.Hour)
	require.NoError(t, err)

	f := &fixture{
		selector:  &fakeSelector{},
		counter:   &fakeCounter{},
		assess:    &fakeAssessments{},
		student:   student,
		admin:     admin,
		testIDURL: uuid.New().String(),
	}
	rh := NewRotationHandler(f.selector, f.counter)
	ah := NewAssessmentHandler(f.assess, f.selector, 5)

	r := gin.New()
	learner := r.Group("/rotation", middleware.RequireJWT(auth))
	learner.POST("/tests/:test_id/selection", rh.Select)
	learner.POST("/tests/:test_id/attempts", rh.StartAttempt)
	admins := r.Group("/admin", middleware.RequireJWT(auth, service.TokenTypeAdmin))
	admins.POST("/tests", ah.ImportTest)
	admins.GET("/tests/:test_id", ah.GetTest)
	admins.PUT("/tests/:test_id/questions", ah.ReplaceQuestions)
	admins.POST("/tests/:test_id/preview", ah.PreviewRotation)
	f.router = r
	return f
}

func (f *fixture) do(method, path, token string, body any) (*httptest.ResponseRecorder, response.Response) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestSelectStudentActsForSelf(t *testing.T) {
	f := newFixture(t)
	w, _ := f.do(http.MethodPost, "/rotation/tests/"+f.testIDURL+"/selection", f.student,
		gin.H{"attempt_number": 3, "resource_sourced_id": "course-9"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, rotation.Request{
		AttemptNumber:     3,
		UserSourcedID:     "learner-1",
		ResourceSourcedID: "course-9",
	}, f.selector.got)
}

func TestSelectStudentCannotImpersonate(t *testing.T) {
	f := newFixture(t)
	w, resp := f.do(http.MethodPost, "/rotation/tests/"+f.testIDURL+"/selection", f.student,
		gin.H{"attempt_number": 1, "user_sourced_id": "someone-else"})

	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, response.ErrForbidden, resp.Error.Code)
}

func TestSelectAdminChoosesLearner(t *testing.T) {
	f := newFixture(t)
	w, _ := f.do(http.MethodPost, "/rotation/tests/"+f.testIDURL+"/selection", f.admin,
		gin.H{"attempt_number": 2, "user_sourced_id": "learner-7", "base_seed": "s"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "learner-7", f.selector.got.UserSourcedID)
	assert.Equal(t, "s", f.selector.got.BaseSeed)
}

func TestSelectValidation(t *testing.T) {
	f := newFixture(t)

	w, resp := f.do(http.MethodPost, "/rotation/tests/"+f.testIDURL+"/selection", f.student,
		gin.H{"attempt_number": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, response.ErrValidation, resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "attempt_number")

	w, resp = f.do(http.MethodPost, "/rotation/tests/"+f.testIDURL+"/selection", f.admin,
		gin.H{"attempt_number": 1, "user_sourced_id": " padded "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Error.Fields, "user_sourced_id")

	w, resp = f.do(http.MethodPost, "/rotation/tests/not-a-uuid/selection", f.student,
		gin.H{"attempt_number": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrInvalidID, resp.Error.Code)
}

func TestSelectErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   response.ErrCode
	}{
		{"not found", service.ErrTestNotFound, http.StatusNotFound, response.ErrNotFound},
		{
			"missing reference",
			&rotation.MissingReferenceError{Identifier: "q9", Section: "s1"},
			http.StatusUnprocessableEntity, response.ErrMissingReference,
		},
		{
			"contract violation",
			&rotation.ContractViolationError{Section: "s1", Reason: "bad"},
			http.StatusUnprocessableEntity, response.ErrInvalidTestDefinition,
		},
		{"internal", errors.New("boom"), http.StatusInternalServerError, response.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.selector.err = tt.err
			w, resp := f.do(http.MethodPost, "/rotation/tests/"+f.testIDURL+"/selection", f.student,
				gin.H{"attempt_number": 1})
			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestMissingReferenceFields(t *testing.T) {
	f := newFixture(t)
	f.selector.err = &rotation.MissingReferenceError{Identifier: "q9", Section: "s1"}
	_, resp := f.do(http.MethodPost, "/rotation/tests/"+f.testIDURL+"/selection", f.student,
		gin.H{"attempt_number": 1})

	require.NotNil(t, resp.Error)
	assert.Equal(t, map[string]string{"identifier": "q9", "section": "s1"}, resp.Error.Fields)
}

func TestStartAttemptAdvancesCounter(t *testing.T) {
	f := newFixture(t)
	for want := 1; want <= 3; want++ {
		w, _ := f.do(http.MethodPost, "/rotation/tests/"+f.testIDURL+"/attempts", f.student, gin.H{})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, want, f.selector.got.AttemptNumber)
		assert.Equal(t, "learner-1", f.selector.got.UserSourcedID)
	}
}

func TestAdminRoutesRejectStudents(t *testing.T) {
	f := newFixture(t)
	w, resp := f.do(http.MethodGet, "/admin/tests/"+f.testIDURL, f.student, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.ErrAdminAccessOnly, resp.Error.Code)
}

func TestImportTest(t *testing.T) {
	f := newFixture(t)
	w, _ := f.do(http.MethodPost, "/admin/tests", f.admin, gin.H{"title": "Quiz", "qti_xml": "<x/>"})
	assert.Equal(t, http.StatusCreated, w.Code)

	f.assess.err = errors.Join(service.ErrInvalidDocument, errors.New("no root"))
	w, resp := f.do(http.MethodPost, "/admin/tests", f.admin, gin.H{"qti_xml": "<x/>"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, response.ErrInvalidTestDefinition, resp.Error.Code)

	w, _ = f.do(http.MethodPost, "/admin/tests", f.admin, gin.H{"title": "Quiz"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReplaceQuestions(t *testing.T) {
	f := newFixture(t)
	body := gin.H{"questions": []gin.H{
		{"identifier": "q1", "content": gin.H{"prompt": "1+1"}},
		{"identifier": "q2", "content": gin.H{"prompt": "2+2"}},
	}}
	w, _ := f.do(http.MethodPut, "/admin/tests/"+f.testIDURL+"/questions", f.admin, body)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.assess.replaced)
	assert.Len(t, f.assess.replaced.Questions, 2)

	f.assess.err = service.ErrDuplicateQuestion
	w, _ = f.do(http.MethodPut, "/admin/tests/"+f.testIDURL+"/questions", f.admin, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = f.do(http.MethodPut, "/admin/tests/"+f.testIDURL+"/questions", f.admin, gin.H{"questions": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewRotation(t *testing.T) {
	f := newFixture(t)
	w, _ := f.do(http.MethodPost, "/admin/tests/"+f.testIDURL+"/preview", f.admin,
		gin.H{"attempts": 4, "user_sourced_id": "learner-2"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, f.selector.attempts)
	assert.Equal(t, "learner-2", f.selector.got.UserSourcedID)

	w, resp := f.do(http.MethodPost, "/admin/tests/"+f.testIDURL+"/preview", f.admin, gin.H{"attempts": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Error.Fields, "attempts")
}
