package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/opencustody/consolekit/api"
	"github.com/opencustody/consolekit/filters"
	"github.com/opencustody/consolekit/httpclient"
	"github.com/opencustody/consolekit/session"
	"github.com/opencustody/consolekit/session/repofake"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, mapClaims jwtlib.MapClaims) string {
	t.Helper()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, mapClaims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newAPI(t *testing.T, handler http.Handler) (*api.API, *session.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := session.NewStore(repofake.NewFakeSessionRepo())
	require.NoError(t, err)
	require.NoError(t, store.Hydrate())

	coordinator, err := httpclient.NewRefreshCoordinator(
		httpclient.NewRefreshFunc(server.URL, server.Client()), store)
	require.NoError(t, err)
	transport, err := httpclient.NewTransport(nil, store, coordinator)
	require.NoError(t, err)
	client, err := httpclient.New(server.URL,
		httpclient.WithHTTPClient(&http.Client{Transport: transport}))
	require.NoError(t, err)

	return api.New(client, store), store
}

func TestClientsListSendsPaginationQuery(t *testing.T) {
	var gotQuery url.Values
	console, _ := newAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/clients", r.URL.Path)
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(api.Page[api.Client]{ //nolint:errcheck
			Items: []api.Client{{ID: "c1", Name: "Acme"}},
			Total: 1, Page: 2, Limit: 25,
		})
	}))

	page, err := console.Clients.List(context.Background(), api.ListParams{
		Page:    2,
		Limit:   25,
		OrderBy: "createdAt",
		Order:   "desc",
		Filter:  map[string]string{"status": "active"},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "Acme", page.Items[0].Name)

	require.Equal(t, "2", gotQuery.Get("page"))
	require.Equal(t, "25", gotQuery.Get("limit"))
	require.Equal(t, "createdAt", gotQuery.Get("orderBy"))
	require.Equal(t, "desc", gotQuery.Get("order"))
	require.Equal(t, "active", gotQuery.Get("status"))
}

func TestSignInWithSecondFactorStepUp(t *testing.T) {
	stepUpToken := signToken(t, jwtlib.MapClaims{"sub": "staff-1", "type": "second_factor"})
	fullToken := signToken(t, jwtlib.MapClaims{"sub": "staff-1", "role": "admin"})

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"accessToken": stepUpToken, "refreshToken": "",
		})
	})
	mux.HandleFunc("/auth/signin/2fa", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "123456", body.Code)
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"accessToken": fullToken, "refreshToken": "R1",
		})
	})

	console, store := newAPI(t, mux)

	result, err := console.Auth.SignIn(context.Background(), "staff@example.com", "password123")
	require.NoError(t, err)
	require.True(t, result.RequiresSecondFactor)
	require.True(t, store.Snapshot().IsValidating)

	require.NoError(t, console.Auth.SubmitCode(context.Background(), "123456"))
	snap := store.Snapshot()
	require.False(t, snap.IsValidating)
	require.Equal(t, "admin", snap.Role)
	require.Equal(t, "R1", snap.RefreshToken)
}

func TestSubmitCodeWithoutStepUpFails(t *testing.T) {
	console, _ := newAPI(t, http.NewServeMux())
	err := console.Auth.SubmitCode(context.Background(), "000000")
	require.Error(t, err)
}

func TestLogoutClearsLocalSessionEvenWhenServerFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	console, store := newAPI(t, mux)
	require.NoError(t, store.LogIn(signToken(t, jwtlib.MapClaims{"sub": "staff-1"}), "R1"))

	err := console.Auth.Logout(context.Background())
	require.Error(t, err, "server failure is still reported")
	require.Equal(t, session.Session{}, store.Snapshot())
}

func TestKYCDecisions(t *testing.T) {
	var approved, rejectReason string
	mux := http.NewServeMux()
	mux.HandleFunc("/kyc/requests/k1/approve", func(w http.ResponseWriter, r *http.Request) {
		approved = "k1"
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/kyc/requests/k2/reject", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Reason string `json:"reason"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		rejectReason = body.Reason
		w.WriteHeader(http.StatusNoContent)
	})

	console, _ := newAPI(t, mux)
	require.NoError(t, console.KYC.Approve(context.Background(), "k1"))
	require.NoError(t, console.KYC.Reject(context.Background(), "k2", "document expired"))
	require.Equal(t, "k1", approved)
	require.Equal(t, "document expired", rejectReason)
}

func TestLimitScope(t *testing.T) {
	require.Equal(t, "global", api.Limit{}.Scope())

	in := api.LimitInput{Currency: "BTC", Period: "day", Amount: "10"}.ForClient("c1")
	require.NotNil(t, in.ClientID)
	require.Equal(t, "c1", *in.ClientID)
	require.Equal(t, "c1", api.Limit{ClientID: in.ClientID}.Scope())
}

func TestParamsFromValues(t *testing.T) {
	p := api.ParamsFromValues(filters.Values{
		"page":    "3",
		"limit":   "50",
		"orderBy": "amount",
		"order":   "asc",
		"status":  "pending",
	})
	require.Equal(t, 3, p.Page)
	require.Equal(t, 50, p.Limit)
	require.Equal(t, "amount", p.OrderBy)
	require.Equal(t, "asc", p.Order)
	require.Equal(t, map[string]string{"status": "pending"}, p.Filter)
}
