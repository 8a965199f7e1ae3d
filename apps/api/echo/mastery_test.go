package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/mastery"
	"github.com/trezcool/darasa/core/user"
)

func Test_masteryApi(t *testing.T) {
	f := setup(t)
	student := f.createUser(t, "Kofi Mensah", "kofi@test.cd", "", user.RoleStudent)
	token := f.getToken(t, student)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/mastery/"+student.ID)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/mastery/"+student.ID, token)
		f.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantData: []byte(`[]`)}, rec)
	})

	t.Run("update requires topic", func(t *testing.T) {
		body := []byte(`{"user_id":"` + student.ID + `","score_delta":10}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/mastery/update", token, body)
		f.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"topic": "this field is required"}),
		}, rec)
	})

	t.Run("update lazily creates", func(t *testing.T) {
		body := []byte(`{"user_id":"` + student.ID + `","topic":"algebra","score_delta":10}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/mastery/update", token, body)
		f.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var m mastery.Mastery
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
		assert.Equal(t, 60, m.Score) // default 50 + 10
		assert.Equal(t, "algebra", m.Topic)

		req, rec = newAuthRequest(http.MethodGet, "/v1/mastery/"+student.ID, token)
		f.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var recs []mastery.Mastery
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recs))
		assert.Len(t, recs, 1)
	})
}

func Test_masteryApi_progress(t *testing.T) {
	f := setup(t)
	student := f.createUser(t, "Kofi Mensah", "kofi@test.cd", "", user.RoleStudent)
	token := f.getToken(t, student)

	t.Run("get creates default", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/progress/"+student.ID, token)
		f.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var p mastery.Progress
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, 1, p.Level)
		assert.Equal(t, 0, p.XP)
	})

	t.Run("negative xp delta fails", func(t *testing.T) {
		body := []byte(`{"user_id":"` + student.ID + `","xp_delta":-5}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/progress/update", token, body)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("xp wraps into level", func(t *testing.T) {
		body := []byte(`{"user_id":"` + student.ID + `","xp_delta":130}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/progress/update", token, body)
		f.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var p mastery.Progress
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, 2, p.Level)
		assert.Equal(t, 30, p.XP)
	})
}
