package scoreboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"akaun-master/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *scoring.Leaderboard) {
	t.Helper()
	storage, err := scoring.NewJSONFileStorage(filepath.Join(t.TempDir(), "scores.json"))
	require.NoError(t, err)
	lb := scoring.NewLeaderboard(storage, nil, nil)
	return NewServer("127.0.0.1:0", lb, nil), lb
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSubmitAndList(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	for _, body := range []string{
		`{"name":"Aina","levelId":"1","score":2,"time":90,"timestamp":1}`,
		`{"name":"Badrul","levelId":"1","score":0,"time":120,"timestamp":2}`,
		`{"name":"Chong","levelId":"1","score":0,"time":60,"timestamp":3}`,
		`{"name":"Devi","levelId":"2","score":0,"time":10,"timestamp":4}`,
	} {
		rec := do(t, h, http.MethodPost, "/scores", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, h, http.MethodGet, "/scores?level=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []scoring.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Chong", "Badrul", "Aina"}, []string{got[0].Name, got[1].Name, got[2].Name})

	rec = do(t, h, http.MethodGet, "/scores?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)
	assert.Equal(t, "Devi", got[0].Name)
}

func TestListEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/scores?level=9", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSubmitRejects(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"unknown field", `{"name":"Aina","levelId":"1","timestamp":1,"admin":true}`},
		{"missing name", `{"levelId":"1","score":0,"time":1,"timestamp":1}`},
		{"negative time", `{"name":"Aina","levelId":"1","score":0,"time":-1,"timestamp":1}`},
		{"too large", `{"name":"` + string(bytes.Repeat([]byte("a"), maxBodyBytes)) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv.Handler(), http.MethodPost, "/scores", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListBadLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv.Handler(), http.MethodGet, "/scores?limit=lots", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPSinkAgainstServer(t *testing.T) {
	srv, lb := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	sink := scoring.NewHTTPSink(ts.URL+"/scores", 0)
	err := sink.Send(t.Context(), scoring.Record{Name: "Aina", LevelID: "3", Score: 1, Time: 300, Timestamp: 5})
	require.NoError(t, err)

	history, err := lb.History(t.Context())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Aina", history[0].Name)
}
