package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tokens := NewMemoryTokenStore()
	tokens.Set("stored-token")
	c := New(srv.URL, tokens)

	if _, err := c.ListTasks(context.Background(), TaskListOptions{}); err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if gotAuth != "Bearer stored-token" {
		t.Errorf("Authorization = %q, want the stored token", gotAuth)
	}
}

func TestClientOmitsHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryTokenStore())
	c.ListTasks(context.Background(), TaskListOptions{})

	if gotAuth != "" {
		t.Errorf("Authorization = %q, want no header", gotAuth)
	}
}

func TestUnauthorizedClearsTokenAndFiresHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Authorization token required"}`))
	}))
	defer srv.Close()

	tokens := NewMemoryTokenStore()
	tokens.Set("about-to-be-revoked")

	var hookFired bool
	c := New(srv.URL, tokens, WithUnauthorizedHook(func() { hookFired = true }))

	_, err := c.Me(context.Background())
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("err = %v, want HTTP 401", err)
	}

	if tok, _ := tokens.Get(); tok != "" {
		t.Error("401 response should clear the stored token")
	}
	if !hookFired {
		t.Error("unauthorized hook should fire")
	}
}

func TestForbiddenAlsoClearsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"Admin access required"}`))
	}))
	defer srv.Close()

	tokens := NewMemoryTokenStore()
	tokens.Set("non-admin-token")
	c := New(srv.URL, tokens)

	_, err := c.ListUsers(context.Background(), UserListOptions{})
	if !IsStatus(err, http.StatusForbidden) {
		t.Fatalf("err = %v, want HTTP 403", err)
	}
	if tok, _ := tokens.Get(); tok != "" {
		t.Error("403 response should clear the stored token")
	}
}

func TestHTTPErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"Email is already registered"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryTokenStore())
	_, err := c.Register(context.Background(), RegisterRequest{
		Email: "dup@taskdeck.local", Password: "password123", DisplayName: "Dup",
	})

	if !IsStatus(err, http.StatusConflict) {
		t.Fatalf("err = %v, want HTTP 409", err)
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.Message != "Email is already registered" {
		t.Errorf("err = %v, want the server's error message", err)
	}
}

func TestIsStatusNonHTTPError(t *testing.T) {
	c := New("http://127.0.0.1:0", NewMemoryTokenStore())
	_, err := c.Me(context.Background())
	if err == nil {
		t.Fatal("expected a transport error")
	}
	if IsStatus(err, http.StatusUnauthorized) {
		t.Error("transport errors are not HTTP status errors")
	}
}
