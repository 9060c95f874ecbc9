package owners_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/condovista/condoctl/api"
	"github.com/condovista/condoctl/owners"
	"github.com/condovista/condoctl/session"
	"github.com/condovista/condoctl/session/storefakes"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, handler http.Handler) *owners.Service {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := storefakes.NewFakeSessionStore()
	require.NoError(t, store.SetAccessToken("a1"))
	require.NoError(t, store.SetProfile(&session.UserProfile{Username: "admin"}))

	client, err := api.New(server.URL, store)
	require.NoError(t, err)
	service, err := owners.NewService(client)
	require.NoError(t, err)
	return service
}

func TestList(t *testing.T) {
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/admin/propietarios/", r.URL.Path)
		require.Equal(t, "Bearer a1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":1,"user":{"username":"ana","first_name":"Ana","last_name":"Diaz"},"telefono":"555-1234","unidad":{"numero":"4B","edificio":"Torre Norte"}}
		]`))
	}))

	got, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 1, got[0].ID)
	require.Equal(t, "Ana Diaz", got[0].FullName())
	require.Equal(t, "4B", got[0].Unit.Number)
}

func TestCreate(t *testing.T) {
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/admin/propietarios/", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "555-1234", body["telefono"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":9,"telefono":"555-1234"}`))
	}))

	created, err := service.Create(context.Background(), &owners.Owner{
		User:  &owners.User{Username: "ana"},
		Phone: "555-1234",
	})
	require.NoError(t, err)
	require.Equal(t, 9, created.ID)
}

func TestUpdateAndDeleteTargetItemPath(t *testing.T) {
	var sawPaths []string
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawPaths = append(sawPaths, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":3}`))
	}))

	_, err := service.Update(context.Background(), 3, &owners.Owner{Phone: "555-0000"})
	require.NoError(t, err)
	require.NoError(t, service.Delete(context.Background(), 3))
	require.Equal(t, []string{
		"PUT /admin/propietarios/3/",
		"DELETE /admin/propietarios/3/",
	}, sawPaths)
}

func TestFullNameHandlesPartialNames(t *testing.T) {
	require.Equal(t, "", (&owners.Owner{}).FullName())
	require.Equal(t, "Ana", (&owners.Owner{User: &owners.User{FirstName: "Ana"}}).FullName())
	require.Equal(t, "Diaz", (&owners.Owner{User: &owners.User{LastName: "Diaz"}}).FullName())
}
