package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"brainscore-quiz-service/internal/app"
	"brainscore-quiz-service/internal/auth"
	"brainscore-quiz-service/internal/domain"
	"brainscore-quiz-service/internal/infra/memory"
	"brainscore-quiz-service/internal/media"
)

type testEnv struct {
	server  *httptest.Server
	quizzes *app.QuizService
	token   string
}

type fakeUploader struct{}

func (fakeUploader) Upload(_ context.Context, f media.File, progress media.ProgressFunc) (string, error) {
	_, _ = io.Copy(io.Discard, f.Body)
	progress(100)
	return "https://cdn.example.com/" + f.Name, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := memory.NewQuizStore()
	cache := memory.NewQuizRepository(store, time.Minute)
	quizzes := app.NewQuizService(store, cache, nil, log)
	play := app.NewPlayService(cache, memory.NewSessionStore(time.Hour), log)
	mediaSvc := app.NewMediaService(fakeUploader{}, quizzes, log)

	hash, err := auth.HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	authSvc := auth.NewService(auth.Options{AdminEmail: "admin@example.com", PasswordHash: hash, Secret: "test"})

	_, err = quizzes.Create(context.Background(), "", domain.QuizInput{
		Slug:        "react-fundamentals",
		Title:       "React Fundamentals",
		Description: "Components and hooks",
		Type:        domain.QuizTypeText,
		Questions: []domain.Question{
			{Text: "Hook for state?", Options: []string{"useEffect", "useState"}, CorrectIndex: 1},
			{Text: "JSX compiles to?", Options: []string{"React.createElement calls", "HTML strings"}, CorrectIndex: 0},
		},
	})
	require.NoError(t, err)

	server := httptest.NewServer(NewRouter(Deps{
		Quizzes: quizzes,
		Play:    play,
		Media:   mediaSvc,
		Auth:    authSvc,
		Log:     log,
	}))
	t.Cleanup(server.Close)

	env := &testEnv{server: server, quizzes: quizzes}
	var login struct {
		AccessToken string `json:"accessToken"`
	}
	resp := env.do(t, http.MethodPost, "/api/auth/login", `{"email":"admin@example.com","password":"s3cret"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &login)
	env.token = login.AccessToken
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestPublicQuizRoutes(t *testing.T) {
	env := newTestEnv(t)

	var list []domain.QuizSummary
	decode(t, env.do(t, http.MethodGet, "/api/quizzes", "", ""), &list)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].QuestionCount)

	resp := env.do(t, http.MethodGet, "/api/quizzes/react-fundamentals", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail map[string]any
	decode(t, resp, &detail)
	assert.NotContains(t, detail, "questions")

	resp = env.do(t, http.MethodGet, "/api/quizzes/unknown", "", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body errorResponse
	decode(t, resp, &body)
	assert.Equal(t, "quiz_not_found", body.Code)
	assert.Equal(t, "/", body.Redirect)
}

func TestPlayOverREST(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/play", `{"slug":"react-fundamentals"}`, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var state app.PlayState
	decode(t, resp, &state)
	require.NotEmpty(t, state.SessionID)
	require.Nil(t, state.Question.CorrectIndex)

	base := "/api/play/" + state.SessionID

	resp = env.do(t, http.MethodPost, base+"/advance", "", "")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var errBody errorResponse
	decode(t, resp, &errBody)
	assert.Equal(t, "invalid_transition", errBody.Code)

	decode(t, env.do(t, http.MethodPost, base+"/select", `{"option":1}`, ""), &state)
	require.True(t, state.Revealed)
	require.Equal(t, 1, *state.Question.CorrectIndex)

	decode(t, env.do(t, http.MethodPost, base+"/advance", "", ""), &state)
	decode(t, env.do(t, http.MethodPost, base+"/select", `{"option":1}`, ""), &state)
	decode(t, env.do(t, http.MethodPost, base+"/advance", "", ""), &state)
	require.NotNil(t, state.Summary)
	assert.Equal(t, 1, state.Summary.Score)
	assert.Equal(t, 2, state.Summary.Total)

	decode(t, env.do(t, http.MethodGet, base, "", ""), &state)
	assert.Equal(t, 100, state.Progress)

	resp = env.do(t, http.MethodDelete, base, "", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	resp = env.do(t, http.MethodGet, base, "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/admin/quizzes", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/admin/quizzes", "", env.token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var me auth.State
	decode(t, env.do(t, http.MethodGet, "/api/auth/me", "", env.token), &me)
	assert.True(t, me.Authorized)

	resp = env.do(t, http.MethodPost, "/api/auth/logout", "", env.token)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/admin/quizzes", "", env.token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginRejectsOtherEmails(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/auth/login", `{"email":"someone@example.com","password":"s3cret"}`, "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	var body errorResponse
	decode(t, resp, &body)
	assert.Equal(t, "unauthorized: only admin can login", body.Error)
}

func TestAdminAuthoring(t *testing.T) {
	env := newTestEnv(t)

	payload := `{"draftId":"d1","slug":"javascript-essentials","title":"JavaScript Essentials","description":"Closures",` +
		`"type":"text","questions":[{"question":"typeof null?","options":["null","object"],"correctIndex":1}]}`
	resp := env.do(t, http.MethodPost, "/api/admin/quizzes", payload, env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created domain.Quiz
	decode(t, resp, &created)

	resp = env.do(t, http.MethodPost, "/api/admin/quizzes", payload, env.token)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict errorResponse
	decode(t, resp, &conflict)
	assert.Equal(t, "slug_taken", conflict.Code)
	assert.Equal(t, "a quiz with this slug already exists", conflict.Error)

	bad := `{"slug":"Bad Slug","title":"","description":"x","type":"text","questions":[]}`
	resp = env.do(t, http.MethodPost, "/api/admin/quizzes", bad, env.token)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var invalid errorResponse
	decode(t, resp, &invalid)
	assert.Equal(t, "validation_failed", invalid.Code)
	assert.Equal(t, "Slug must be lowercase letters, numbers, and hyphens only", invalid.Error)
	assert.Len(t, invalid.Problems, 2)

	edits := `{"edits":[{"op":"add_question"},{"op":"set_text","question":1,"value":"Arrow functions bind this?"},` +
		`{"op":"set_option","question":1,"option":0,"value":"Lexically"},{"op":"set_option","question":1,"option":1,"value":"Dynamically"},` +
		`{"op":"remove_option","question":1,"option":3},{"op":"remove_option","question":1,"option":2}]}`
	resp = env.do(t, http.MethodPatch, "/api/admin/quizzes/"+created.ID+"/questions", edits, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var edited domain.Quiz
	decode(t, resp, &edited)
	require.Len(t, edited.Questions, 2)
	assert.Equal(t, []string{"Lexically", "Dynamically"}, edited.Questions[1].Options)

	resp = env.do(t, http.MethodDelete, "/api/admin/quizzes/"+created.ID, "", env.token)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestMediaUpload(t *testing.T) {
	env := newTestEnv(t)
	quiz, err := env.quizzes.GetBySlug(context.Background(), "react-fundamentals")
	require.NoError(t, err)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "hooks.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, form.Close())

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/admin/media?draft="+quiz.ID+"&question=0", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var uploaded uploadResponse
	decode(t, resp, &uploaded)
	assert.Equal(t, "https://cdn.example.com/hooks.png", uploaded.URL)

	stored, err := env.quizzes.GetByID(context.Background(), quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, uploaded.URL, stored.Questions[0].Media)

	var status uploadStatusResponse
	decode(t, env.do(t, http.MethodGet, "/api/admin/media/status?draft="+quiz.ID, "", env.token), &status)
	assert.False(t, status.Uploading)
}
