package httpx

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/streakly/internal/auth"
	"example.com/streakly/internal/feedback"
	"example.com/streakly/internal/storage/memory"
	"example.com/streakly/internal/usecase"
)

type fakeAuth struct {
	session auth.Session
	err     error
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (auth.Session, error) {
	return f.session, f.err
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	return f.session, f.err
}

func (f *fakeAuth) SignOut(ctx context.Context, token string) error {
	return f.err
}

func testToken(t *testing.T, sub string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.test",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newTestHandler(store *memory.Store, authClient Authenticator) http.Handler {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	fb := feedback.New(rand.New(rand.NewSource(1)))
	registry := usecase.NewRegistry(store, store, fb, log)
	return New(registry, authClient)
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestHandler(memory.New(), &fakeAuth{})
	rec := do(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequiresToken(t *testing.T) {
	h := newTestHandler(memory.New(), &fakeAuth{})
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/state"},
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodPut, "/api/settings/goal"},
	} {
		rec := do(t, h, tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
	rec := do(t, h, http.MethodGet, "/api/state", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignIn(t *testing.T) {
	token := testToken(t, "user-1")
	h := newTestHandler(memory.New(), &fakeAuth{session: auth.Session{AccessToken: token}})
	rec := do(t, h, http.MethodPost, "/api/auth/signin", "", `{"email":"a@b.test","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var session auth.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, token, session.AccessToken)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	h := newTestHandler(memory.New(), &fakeAuth{err: auth.ErrAuthFailed})
	rec := do(t, h, http.MethodPost, "/api/auth/signin", "", `{"email":"a@b.test","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/auth/signin", "", `{"email":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddTaskValidation(t *testing.T) {
	token := testToken(t, "user-1")
	h := newTestHandler(memory.New(), &fakeAuth{})

	rec := do(t, h, http.MethodPost, "/api/tasks", token, `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/tasks", token, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoalValidation(t *testing.T) {
	token := testToken(t, "user-1")
	h := newTestHandler(memory.New(), &fakeAuth{})
	for _, body := range []string{`{"goal":0}`, `{"goal":-1}`, `{"goal":51}`} {
		rec := do(t, h, http.MethodPut, "/api/settings/goal", token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestTaskFlow(t *testing.T) {
	token := testToken(t, "user-1")
	h := newTestHandler(memory.New(), &fakeAuth{})

	rec := do(t, h, http.MethodPut, "/api/settings/goal", token, `{"goal":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/tasks", token, `{"text":"write tests"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rec = do(t, h, http.MethodPost, "/api/tasks/"+created.ID+"/toggle", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap usecase.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.Streak)
	assert.NotEmpty(t, snap.CompletionMessage)
	assert.Contains(t, snap.StreakMessage, "1")

	rec = do(t, h, http.MethodPatch, "/api/tasks/"+created.ID, token, `{"text":"write more tests"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "write more tests", snap.Tasks[0].Text)

	rec = do(t, h, http.MethodDelete, "/api/tasks/"+created.ID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	// Unmarshal into a zeroed snapshot: decoding into the reused snap would
	// merge into its existing History map and keep stale entries.
	snap = usecase.Snapshot{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Empty(t, snap.Tasks)
	assert.Empty(t, snap.History)
	assert.Equal(t, 0, snap.Streak)
}

func TestEditCommitsOnFreshManager(t *testing.T) {
	// The task exists in the store before this process ever saw the owner,
	// e.g. right after a restart or a sign-out dropped the manager. The
	// very first request being the PATCH must still commit the edit.
	token := testToken(t, "user-1")
	store := memory.New()
	task, err := store.Create(context.Background(), "user-1", "before")
	require.NoError(t, err)

	h := newTestHandler(store, &fakeAuth{})
	rec := do(t, h, http.MethodPatch, "/api/tasks/"+task.ID, token, `{"text":"after"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap usecase.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "after", snap.Tasks[0].Text)

	items, err := store.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "after", items[0].Text)
}

func TestTasksByDay(t *testing.T) {
	token := testToken(t, "user-1")
	store := memory.New()
	h := newTestHandler(store, &fakeAuth{})

	rec := do(t, h, http.MethodPost, "/api/tasks", token, `{"text":"today"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	day := time.Now().Format("2006-01-02")
	rec = do(t, h, http.MethodGet, "/api/tasks?day="+day, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []struct {
			Text string `json:"text"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "today", resp.Items[0].Text)

	rec = do(t, h, http.MethodGet, "/api/tasks?day=1999-01-01", token, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Items)
}

func TestOwnersAreIsolated(t *testing.T) {
	h := newTestHandler(memory.New(), &fakeAuth{})
	tokenA := testToken(t, "user-a")
	tokenB := testToken(t, "user-b")

	rec := do(t, h, http.MethodPost, "/api/tasks", tokenA, `{"text":"mine"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/state", tokenB, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap usecase.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Empty(t, snap.Tasks)
}
