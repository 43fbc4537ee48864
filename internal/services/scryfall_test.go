package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cardforge/deck-builder/backend/internal/models"
)

// newTestService builds a client against a fake catalog with timings short
// enough for tests.
func newTestService(baseURL string) *ScryfallService {
	s := NewScryfallService(baseURL)
	s.throttle = NewThrottle(time.Millisecond)
	s.backoffStep = time.Millisecond
	return s
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("failed to encode response: %v", err)
	}
}

func TestSearchCards(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "t:background" {
			t.Errorf("unexpected query %q", got)
		}
		if got := r.URL.Query().Get("order"); got != "edhrec" {
			t.Errorf("unexpected order %q", got)
		}
		writeJSON(t, w, searchResponse{
			Data: []models.CardRecord{
				{Name: "Raised by Giants", TypeLine: "Legendary Enchantment — Background"},
			},
			TotalCards: 1,
		})
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	result, err := svc.SearchCards(context.Background(), "t:background", SearchOptions{Order: "edhrec"})
	if err != nil {
		t.Fatalf("SearchCards failed: %v", err)
	}
	if len(result.Cards) != 1 || result.Cards[0].Name != "Raised by Giants" {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.HasMore {
		t.Error("expected HasMore=false")
	}
}

func TestSearchAllCardsPagination(t *testing.T) {
	var pages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		switch page {
		case "", "1":
			writeJSON(t, w, searchResponse{
				Data:    []models.CardRecord{{Name: "Card A"}},
				HasMore: true,
			})
		default:
			writeJSON(t, w, searchResponse{
				Data: []models.CardRecord{{Name: "Card B"}},
			})
		}
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	cards, err := svc.SearchAllCards(context.Background(), "o:partner", SearchOptions{})
	if err != nil {
		t.Fatalf("SearchAllCards failed: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards across pages, got %d", len(cards))
	}
	if len(pages) != 2 {
		t.Errorf("expected 2 page requests, got %d (%v)", len(pages), pages)
	}
}

func TestNamedExactNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	_, err := svc.NamedExact(context.Background(), "No Such Card")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRateLimitRetrySucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(t, w, models.CardRecord{Name: "Sol Ring"})
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	record, err := svc.NamedExact(context.Background(), "Sol Ring")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if record.Name != "Sol Ring" {
		t.Errorf("unexpected record %+v", record)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestRateLimitRetryBudgetExhausted(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	_, err := svc.NamedExact(context.Background(), "Sol Ring")
	if err != ErrRateLimited {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if attempts != maxRateLimitRetries+1 {
		t.Errorf("expected %d attempts, got %d", maxRateLimitRetries+1, attempts)
	}
}

func TestTransportFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	_, err := svc.NamedExact(context.Background(), "Sol Ring")
	if err == nil {
		t.Fatal("expected error on 500")
	}
	if err == ErrNotFound || err == ErrRateLimited {
		t.Errorf("500 must be a transport failure, got %v", err)
	}
}

func TestCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/cards/collection" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var req collectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Identifiers) != 2 {
			t.Errorf("expected 2 identifiers, got %d", len(req.Identifiers))
		}

		writeJSON(t, w, collectionResponse{
			Data:     []models.CardRecord{{Name: "Sol Ring"}},
			NotFound: []collectionIdentifier{{Name: "Unreleased Test Card"}},
		})
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	result, err := svc.Collection(context.Background(), []string{"Sol Ring", "Unreleased Test Card"})
	if err != nil {
		t.Fatalf("Collection failed: %v", err)
	}
	if len(result.Found) != 1 || result.Found[0].Name != "Sol Ring" {
		t.Errorf("unexpected found list: %+v", result.Found)
	}
	if len(result.NotFound) != 1 || result.NotFound[0] != "Unreleased Test Card" {
		t.Errorf("unexpected not-found list: %v", result.NotFound)
	}
}

func TestCollectionRejectsOversizedChunk(t *testing.T) {
	svc := newTestService("http://127.0.0.1:0")

	names := make([]string, collectionChunkSize+1)
	for i := range names {
		names[i] = "Card"
	}

	if _, err := svc.Collection(context.Background(), names); err == nil {
		t.Error("expected error for oversized collection request")
	}
}

func TestAutocompleteCaching(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeJSON(t, w, autocompleteResponse{Data: []string{"Sol Ring", "Solemn Simulacrum"}})
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	for i := 0; i < 3; i++ {
		suggestions, err := svc.Autocomplete(context.Background(), "sol")
		if err != nil {
			t.Fatalf("Autocomplete failed: %v", err)
		}
		if len(suggestions) != 2 {
			t.Errorf("expected 2 suggestions, got %d", len(suggestions))
		}
	}

	if requests != 1 {
		t.Errorf("expected 1 network request, got %d", requests)
	}
}
