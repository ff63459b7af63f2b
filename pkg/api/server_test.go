package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mockrepositories "github.com/cbodonnell/settlers/mocks/github.com/cbodonnell/settlers/pkg/repositories"
	"github.com/cbodonnell/settlers/pkg/game/mirror"
	"github.com/cbodonnell/settlers/pkg/game/types"
	"github.com/cbodonnell/settlers/pkg/repositories"
	"github.com/cbodonnell/settlers/pkg/repositories/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubAuthHandler struct{}

func (stubAuthHandler) HandleLogin() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}
}

func serve(t *testing.T, opts NewAPIServerOptions, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewRouter(opts).ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRouter_healthAndVersion(t *testing.T) {
	rec := serve(t, NewAPIServerOptions{}, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(t, NewAPIServerOptions{}, http.MethodGet, "/version")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"version":"dev"}`, rec.Body.String())
}

func TestRouter_preflight(t *testing.T) {
	rec := serve(t, NewAPIServerOptions{AllowOrigin: "https://settlers.example"}, http.MethodOptions, "/healthz")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://settlers.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_session(t *testing.T) {
	m := mirror.New()
	opts := NewAPIServerOptions{Mirror: m}

	rec := serve(t, opts, http.MethodGet, "/session")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	session := uuid.New()
	m.Apply(&types.GameSnapshot{SessionID: session, Sequence: 3, Phase: types.PhasePlaying, Round: 4})
	rec = serve(t, opts, http.MethodGet, "/session")
	require.Equal(t, http.StatusOK, rec.Code)

	var got types.GameSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, session, got.SessionID)
	assert.Equal(t, uint64(3), got.Sequence)
	assert.Equal(t, 4, got.Round)
}

func TestRouter_listResults(t *testing.T) {
	result := &models.MatchResult{SessionID: uuid.New(), WinnerID: 1, WinnerName: "alice", FinishedAt: time.Unix(1700000000, 0).UTC()}

	tests := []struct {
		name      string
		target    string
		wantLimit int
		wantCode  int
	}{
		{name: "default limit", target: "/results", wantLimit: repositories.DefaultListLimit, wantCode: http.StatusOK},
		{name: "explicit limit", target: "/results?limit=5", wantLimit: 5, wantCode: http.StatusOK},
		{name: "capped limit", target: "/results?limit=100000", wantLimit: 500, wantCode: http.StatusOK},
		{name: "bad limit", target: "/results?limit=abc", wantCode: http.StatusBadRequest},
		{name: "zero limit", target: "/results?limit=0", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mockrepositories.NewMockRepository(t)
			if tt.wantCode == http.StatusOK {
				repo.On("ListMatchResults", mock.Anything, tt.wantLimit).Return([]*models.MatchResult{result}, nil).Once()
			}

			rec := serve(t, NewAPIServerOptions{Repository: repo}, http.MethodGet, tt.target)
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			var got []*models.MatchResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			require.Len(t, got, 1)
			assert.Equal(t, result.SessionID, got[0].SessionID)
			assert.Equal(t, "alice", got[0].WinnerName)
		})
	}
}

func TestRouter_listResultsError(t *testing.T) {
	repo := mockrepositories.NewMockRepository(t)
	repo.On("ListMatchResults", mock.Anything, repositories.DefaultListLimit).Return(nil, errors.New("db down"))

	rec := serve(t, NewAPIServerOptions{Repository: repo}, http.MethodGet, "/results")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouter_getResult(t *testing.T) {
	found := uuid.New()
	missing := uuid.New()
	broken := uuid.New()

	repo := mockrepositories.NewMockRepository(t)
	repo.On("GetMatchResult", mock.Anything, found).Return(&models.MatchResult{SessionID: found, WinnerID: 2}, nil)
	repo.On("GetMatchResult", mock.Anything, missing).Return(nil, &repositories.ErrNotFound{})
	repo.On("GetMatchResult", mock.Anything, broken).Return(nil, errors.New("db down"))
	opts := NewAPIServerOptions{Repository: repo}

	rec := serve(t, opts, http.MethodGet, "/results/"+found.String())
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.MatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, uint32(2), got.WinnerID)

	assert.Equal(t, http.StatusNotFound, serve(t, opts, http.MethodGet, "/results/"+missing.String()).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(t, opts, http.MethodGet, "/results/"+broken.String()).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, opts, http.MethodGet, "/results/not-a-uuid").Code)
}

func TestRouter_optionalRoutes(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, serve(t, NewAPIServerOptions{}, http.MethodGet, "/session").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, NewAPIServerOptions{}, http.MethodGet, "/results").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, NewAPIServerOptions{}, http.MethodPost, "/auth/login").Code)

	rec := serve(t, NewAPIServerOptions{AuthHandler: stubAuthHandler{}}, http.MethodPost, "/auth/login")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	ws := NewAPIServerOptions{WSHandler: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}}
	rec = serve(t, ws, http.MethodGet, "/ws")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
