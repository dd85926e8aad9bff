package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/augesrob/Badger-sub000/config"
)

func setupSubscriptionRouter() *gin.Engine {
	r := gin.Default()
	handler := NewHandler(nil, nil, nil)
	r.PUT("/api/subscriptions", handler.PutSubscription)
	return r
}

func TestPutSubscription(t *testing.T) {
	router := setupSubscriptionRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/subscriptions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())
}

func TestSubscriptionLifecycle(t *testing.T) {
	r := NewRouter(newTestStore(t), nil, nil, config.Default().Server)
	const endpoint = "https://push.example.com/abc"

	w := do(t, r, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPut, "/api/subscriptions", map[string]any{
		"endpoint":       endpoint,
		"p256dh":         "key",
		"auth":           "secret",
		"watched_trucks": []string{"151", " 151", "705", ""},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct {
		WatchedTrucks []string `json:"watched_trucks"`
	}](t, w)
	assert.ElementsMatch(t, []string{"151", "705"}, got.WatchedTrucks)

	// Replacing the subscription replaces its trucks.
	w = do(t, r, http.MethodPut, "/api/subscriptions", map[string]any{
		"endpoint": endpoint, "p256dh": "key2", "auth": "secret2",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	assert.JSONEq(t, `{"watched_trucks":[]}`, w.Body.String())

	w = do(t, r, http.MethodDelete, "/api/subscriptions", map[string]string{"endpoint": endpoint})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/subscriptions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	testCases := []struct {
		name         string
		options      *webpush.Options
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Not configured",
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: `{"error":"push notifications are not configured"}`,
		},
		{
			name:         "Configured",
			options:      &webpush.Options{VAPIDPublicKey: "BPublic"},
			expectedCode: http.StatusOK,
			expectedBody: `{"public_key":"BPublic"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/key", NewHandler(nil, nil, tc.options).GetVAPIDPublicKey)
			w := do(t, r, http.MethodGet, "/key", nil)
			assert.Equal(t, tc.expectedCode, w.Code)
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
		})
	}
}
