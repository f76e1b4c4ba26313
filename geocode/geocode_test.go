package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "storefront-test" {
			t.Errorf("expected identifying user agent, got %s", ua)
		}
		if r.URL.Query().Get("lat") != "-6.2" || r.URL.Query().Get("lon") != "106.816666" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"display_name":"Jl. Merdeka, Jakarta","address":{"city":"Jakarta"}}`))
	}))
	defer srv.Close()

	p := New(srv.URL, "storefront-test", nil).Reverse(context.Background(), -6.2, 106.816666)
	if p == nil {
		t.Fatal("expected a place")
	}
	if p.DisplayName != "Jl. Merdeka, Jakarta" || p.Address["city"] != "Jakarta" {
		t.Errorf("unexpected place %+v", p)
	}
}

func TestReverseFailuresReturnNil(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`<html>`)) }},
		{"no address", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"error":"Unable to geocode"}`)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			if p := New(srv.URL, "ua", nil).Reverse(context.Background(), 0, 0); p != nil {
				t.Errorf("expected nil, got %+v", p)
			}
		})
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	if p := New(srv.URL, "ua", nil).Reverse(context.Background(), 0, 0); p != nil {
		t.Error("expected nil on connection failure")
	}
}
