package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("format") != "json" || q.Get("action") != "query" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		switch q.Get("list") {
		case "search":
			if q.Get("srsearch") == "" {
				http.Error(w, "missing srsearch", http.StatusBadRequest)
				return
			}
			w.Write([]byte(`{"query":{"search":[{"title":"Go (programming language)"},{"title":"Go (game)"}]}}`))
		case "random":
			w.Write([]byte(`{"query":{"random":[{"title":"Ada Lovelace"},{"title":"Grace Hopper"}]}}`))
		default:
			http.Error(w, "unknown list", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Search(t *testing.T) {
	c := NewClient(fakeAPI(t).URL)

	titles, err := c.Search(context.Background(), "golang")
	if err != nil {
		t.Fatal(err)
	}
	if len(titles) != 2 {
		t.Fatalf("got %d titles, want 2", len(titles))
	}
	if titles[0] != "Go (programming language)" {
		t.Errorf("best match = %q, want Go (programming language)", titles[0])
	}
}

func TestClient_Random(t *testing.T) {
	c := NewClient(fakeAPI(t).URL)

	titles, err := c.Random(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(titles) != 2 {
		t.Fatalf("got %d titles, want 2", len(titles))
	}
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	if _, err := c.Search(context.Background(), "anything"); err == nil {
		t.Error("expected an error from a failing API")
	}
	if _, err := c.Random(context.Background(), 1); err == nil {
		t.Error("expected an error from a failing API")
	}
}

func TestNewClient_DefaultURL(t *testing.T) {
	c := NewClient("")
	if c.apiURL != DefaultAPIURL {
		t.Errorf("apiURL = %q, want %q", c.apiURL, DefaultAPIURL)
	}
}
