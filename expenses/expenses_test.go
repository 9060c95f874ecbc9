package expenses_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/condovista/condoctl/api"
	"github.com/condovista/condoctl/expenses"
	"github.com/condovista/condoctl/session"
	"github.com/condovista/condoctl/session/storefakes"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, handler http.Handler) *expenses.Service {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := storefakes.NewFakeSessionStore()
	require.NoError(t, store.SetAccessToken("a1"))
	require.NoError(t, store.SetProfile(&session.UserProfile{Username: "admin"}))

	client, err := api.New(server.URL, store)
	require.NoError(t, err)
	service, err := expenses.NewService(client)
	require.NoError(t, err)
	return service
}

func TestListEncodesQueryParams(t *testing.T) {
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/expensas/", r.URL.Path)
		require.Equal(t, "torre", r.URL.Query().Get("search"))
		require.Equal(t, "-fecha_emision", r.URL.Query().Get("ordering"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"mes_referencia":"2026-08","monto_total":"150.00","pagada":false,"fecha_pago":null}]`))
	}))

	got, err := service.List(context.Background(), expenses.ListParams{
		Search:   "torre",
		Ordering: "-fecha_emision",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "2026-08", got[0].ReferenceMonth)
	require.Equal(t, "150.00", got[0].TotalAmount)
	require.False(t, got[0].Paid)
	require.Nil(t, got[0].PaymentDate)
}

func TestSetPaidStampsPaymentDate(t *testing.T) {
	var body map[string]any
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/admin/expensas/5/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":5,"pagada":true,"fecha_pago":"2026-08-31"}`))
	}))

	updated, err := service.SetPaid(context.Background(), 5, true, "2026-08-31")
	require.NoError(t, err)
	require.True(t, updated.Paid)
	require.Equal(t, true, body["pagada"])
	require.Equal(t, "2026-08-31", body["fecha_pago"])
}

func TestSetPaidRevertClearsPaymentDate(t *testing.T) {
	var body map[string]any
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":5,"pagada":false,"fecha_pago":null}`))
	}))

	updated, err := service.SetPaid(context.Background(), 5, false, "")
	require.NoError(t, err)
	require.False(t, updated.Paid)
	require.Contains(t, body, "fecha_pago")
	require.Nil(t, body["fecha_pago"])
}

func TestGetDecodesNestedOwner(t *testing.T) {
	service := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/expensas/2/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":2,"propietario":{"id":7,"user":{"first_name":"Ana","last_name":"Diaz"},"unidad":{"numero":"4B","edificio":"Torre Norte"}},"monto_total":"99.50","pagada":true,"fecha_pago":"2026-08-01"}`))
	}))

	got, err := service.Get(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, got.Owner)
	require.Equal(t, "Ana Diaz", got.Owner.FullName())
	require.NotNil(t, got.PaymentDate)
	require.Equal(t, "2026-08-01", *got.PaymentDate)
}
