package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/banglehouse/bangles-backend/internal/app/service"
	"github.com/banglehouse/bangles-backend/internal/storage"
	"github.com/banglehouse/bangles-backend/pkg/translate"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTranslationTest(t *testing.T, status int) (*gin.Engine, *int32) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(status)
		if status == http.StatusOK {
			w.Write([]byte(`{"translatedText":"चूड़ी"}`))
		}
	}))
	t.Cleanup(upstream.Close)

	client, err := translate.NewClient(translate.Config{
		BaseURL:     upstream.URL,
		FallbackURL: upstream.URL,
	}, storage.NewMemoryStore())
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/translate", NewTranslationController(service.NewTranslationService(client)).Translate)
	return router, &calls
}

func TestTranslationController_Translate(t *testing.T) {
	router, calls := setupTranslationTest(t, http.StatusOK)
	body := map[string]string{"text": "Bangle", "source": "en", "target": "hi"}

	w := postJSON(router, "/translate", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"translated_text":"चूड़ी","cached":false}`, w.Body.String())

	w = postJSON(router, "/translate", body)
	require.Equal(t, http.StatusOK, w.Code)
	var resp translate.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Cached)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestTranslationController_UpstreamDown(t *testing.T) {
	router, _ := setupTranslationTest(t, http.StatusServiceUnavailable)

	w := postJSON(router, "/translate", map[string]string{"text": "Bangle", "source": "en", "target": "hi"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"translated_text":"Bangle","cached":false}`, w.Body.String())
}

func TestTranslationController_InvalidRequest(t *testing.T) {
	router, calls := setupTranslationTest(t, http.StatusOK)

	w := postJSON(router, "/translate", map[string]string{"text": "Bangle", "target": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "TRANSLATE_INVALID_REQUEST")
	assert.Zero(t, atomic.LoadInt32(calls))
}
