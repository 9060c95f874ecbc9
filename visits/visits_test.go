package visits_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/condovista/condoctl/api"
	"github.com/condovista/condoctl/session"
	"github.com/condovista/condoctl/session/storefakes"
	"github.com/condovista/condoctl/visits"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, handler http.Handler) *visits.Service {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := storefakes.NewFakeSessionStore()
	require.NoError(t, store.SetAccessToken("a1"))
	require.NoError(t, store.SetProfile(&session.UserProfile{Username: "admin"}))

	client, err := api.New(server.URL, store)
	require.NoError(t, err)
	service, err := visits.NewService(client)
	require.NoError(t, err)
	return service
}

func TestCreateOmitsServerGeneratedFields(t *testing.T) {
	var body map[string]any
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/admin/visitas/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":4,"nombre_visitante":"Carlos Ruiz","codigo_acceso":"XJ29","qr_code":"https://backend/qr/4.png"}`))
	}))

	created, err := service.Create(context.Background(), &visits.Visit{
		VisitorName: "Carlos Ruiz",
		VisitDate:   "2026-09-01",
		StartTime:   "10:00:00",
		EndTime:     "11:00:00",
		Status:      visits.StatusScheduled,
		OwnerID:     7,
		// Set by a confused caller; must never reach the wire.
		AccessCode: "FORGED",
		QRCode:     "https://evil/qr.png",
	})
	require.NoError(t, err)

	require.NotContains(t, body, "codigo_acceso")
	require.NotContains(t, body, "qr_code")
	require.Equal(t, "Carlos Ruiz", body["nombre_visitante"])
	require.Equal(t, float64(7), body["propietario"])

	// Server-generated values come back on the response.
	require.Equal(t, "XJ29", created.AccessCode)
	require.NotEmpty(t, created.QRCode)
}

func TestUpdateKeepsTimesWithSeconds(t *testing.T) {
	var body map[string]any
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/admin/visitas/4/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":4}`))
	}))

	_, err := service.Update(context.Background(), 4, &visits.Visit{
		VisitorName: "Carlos Ruiz",
		VisitDate:   "2026-09-01",
		StartTime:   "10:00:00",
		EndTime:     "11:30:00",
		Status:      visits.StatusFinished,
		OwnerID:     7,
	})
	require.NoError(t, err)
	require.Equal(t, "10:00:00", body["hora_inicio"])
	require.Equal(t, "11:30:00", body["hora_fin"])
	require.Equal(t, visits.StatusFinished, body["estado"])
}

func TestListDecodesServerFields(t *testing.T) {
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/visitas/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":4,"nombre_visitante":"Carlos Ruiz","estado":"programada","codigo_acceso":"XJ29","qr_code":"https://backend/qr/4.png","propietario":7}]`))
	}))

	got, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "XJ29", got[0].AccessCode)
	require.Equal(t, visits.StatusScheduled, got[0].Status)
	require.Equal(t, 7, got[0].OwnerID)
}
