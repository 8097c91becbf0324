package anchor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testChainHash = "8990e7a9aaed2ffed73dbd7092123d6f289930540d7651336225dc172e51b2ce"

func TestFetchLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantPath := "/" + testChainHash + "/public/latest"
		if r.URL.Path != wantPath {
			t.Errorf("request path = %s, want %s", r.URL.Path, wantPath)
		}
		fmt.Fprint(w, `{"round":4641203,"randomness":"ab12","signature":"cd34"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testChainHash, time.Second)
	round := c.FetchLatest(context.Background())
	if round == nil {
		t.Fatal("expected a round, got nil")
	}
	if round.Round != 4641203 {
		t.Errorf("round = %d, want 4641203", round.Round)
	}
	if round.Randomness != "ab12" || round.Signature != "cd34" {
		t.Errorf("unexpected round contents: %+v", round)
	}
	if round.ChainHash != testChainHash {
		t.Errorf("chainHash = %s, want %s", round.ChainHash, testChainHash)
	}
	if round.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}
}

func TestFetchLatestFailOpen(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "not json")
		}},
		{"missing round", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"randomness":"ab","signature":"cd"}`)
		}},
		{"missing randomness", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"round":1,"signature":"cd"}`)
		}},
		{"missing signature", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"round":1,"randomness":"ab"}`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, testChainHash, time.Second)
			if round := c.FetchLatest(context.Background()); round != nil {
				t.Errorf("expected nil round, got %+v", round)
			}
		})
	}
}

func TestFetchLatestUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", testChainHash, 200*time.Millisecond)
	if round := c.FetchLatest(context.Background()); round != nil {
		t.Errorf("expected nil round for unreachable beacon, got %+v", round)
	}
}

func TestDisabled(t *testing.T) {
	if round := (Disabled{}).FetchLatest(context.Background()); round != nil {
		t.Errorf("Disabled fetcher must return nil, got %+v", round)
	}
}
