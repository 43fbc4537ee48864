package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cardforge/deck-builder/backend/internal/models"
)

func TestClassifyPartnerMechanic(t *testing.T) {
	tests := []struct {
		name        string
		record      *models.CardRecord
		want        PartnerMechanic
		wantPartner string
	}{
		{
			name:   "no mechanic",
			record: &models.CardRecord{Name: "Atraxa, Praetors' Voice", OracleText: "Flying, vigilance, deathtouch, lifelink"},
			want:   MechanicNone,
		},
		{
			name:   "generic partner",
			record: &models.CardRecord{Name: "Thrasios, Triton Hero", OracleText: "Partner (You can have two commanders if both have partner.)"},
			want:   MechanicPartner,
		},
		{
			name:        "partner with",
			record:      &models.CardRecord{Name: "Pir, Imaginative Rascal", OracleText: "Partner with Toothy, Imaginary Friend (When this creature enters, target player may put Toothy into their hand.)"},
			want:        MechanicPartnerWith,
			wantPartner: "Toothy, Imaginary Friend",
		},
		{
			name:   "friends forever",
			record: &models.CardRecord{Name: "Bjorna, Nightfall Alchemist", OracleText: "Friends forever (You can have two commanders if both have friends forever.)"},
			want:   MechanicFriendsForever,
		},
		{
			name:   "choose a background",
			record: &models.CardRecord{Name: "Wilson, Refined Grizzly", OracleText: "Choose a Background (You can have a Background as a second commander.)"},
			want:   MechanicChooseBackground,
		},
		{
			name:   "background",
			record: &models.CardRecord{Name: "Raised by Giants", TypeLine: "Legendary Enchantment — Background"},
			want:   MechanicBackground,
		},
		{
			name:   "doctor's companion",
			record: &models.CardRecord{Name: "Clara Oswald", OracleText: "Doctor's companion (You can have two commanders if the other is the Doctor.)"},
			want:   MechanicDoctorsCompanion,
		},
		{
			name:   "doctor",
			record: &models.CardRecord{Name: "The Tenth Doctor", TypeLine: "Legendary Creature — Time Lord Doctor"},
			want:   MechanicDoctor,
		},
		{
			name: "partner with on a card face",
			record: &models.CardRecord{
				Name: "Sakashima of a Thousand Faces",
				CardFaces: []models.CardFace{
					{Name: "Front", OracleText: "Partner with Krark, the Thumbless"},
				},
			},
			want:        MechanicPartnerWith,
			wantPartner: "Krark, the Thumbless",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, partner := ClassifyPartnerMechanic(tt.record)
			if got != tt.want {
				t.Errorf("ClassifyPartnerMechanic() = %s, want %s", got, tt.want)
			}
			if partner != tt.wantPartner {
				t.Errorf("partner name = %q, want %q", partner, tt.wantPartner)
			}
		})
	}
}

func TestPartnerQueryTemplates(t *testing.T) {
	searchable := []PartnerMechanic{
		MechanicPartner, MechanicFriendsForever, MechanicChooseBackground,
		MechanicBackground, MechanicDoctorsCompanion, MechanicDoctor,
	}
	for _, mechanic := range searchable {
		query, ok := partnerQuery(mechanic)
		if !ok || query == "" {
			t.Errorf("expected a query template for %s", mechanic)
		}
	}

	for _, mechanic := range []PartnerMechanic{MechanicNone, MechanicPartnerWith} {
		if _, ok := partnerQuery(mechanic); ok {
			t.Errorf("%s must not translate into a search query", mechanic)
		}
	}
}

func TestFindPartnersPartnerWithUsesNamedLookupOnly(t *testing.T) {
	var searchCalls, namedCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cards/search":
			searchCalls++
			w.WriteHeader(http.StatusNotFound)
		case "/cards/named":
			namedCalls++
			writeJSON(t, w, models.CardRecord{Name: "Toothy, Imaginary Friend"})
		}
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	resolver := NewResolver(svc, NewRecordCache())
	finder := NewPartnerFinder(svc, resolver)

	commander := &models.CardRecord{
		Name:       "Pir, Imaginative Rascal",
		OracleText: "Partner with Toothy, Imaginary Friend",
	}
	candidates, err := finder.FindPartners(context.Background(), commander, "")
	if err != nil {
		t.Fatalf("FindPartners failed: %v", err)
	}

	if len(candidates) != 1 || candidates[0].Name != "Toothy, Imaginary Friend" {
		t.Errorf("expected the single named partner, got %+v", candidates)
	}
	if searchCalls != 0 {
		t.Errorf("partner-with must never search, got %d search calls", searchCalls)
	}
	if namedCalls != 1 {
		t.Errorf("expected exactly 1 named lookup, got %d", namedCalls)
	}
}

func TestFindPartnersExcludesCommander(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, searchResponse{Data: []models.CardRecord{
			{Name: "Thrasios, Triton Hero"},
			{Name: "Tymna the Weaver"},
		}})
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	finder := NewPartnerFinder(svc, NewResolver(svc, NewRecordCache()))

	commander := &models.CardRecord{
		Name:       "Thrasios, Triton Hero",
		OracleText: "Partner (You can have two commanders if both have partner.)",
	}
	candidates, err := finder.FindPartners(context.Background(), commander, "")
	if err != nil {
		t.Fatalf("FindPartners failed: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate after excluding the commander, got %d", len(candidates))
	}
	if candidates[0].Name != "Tymna the Weaver" {
		t.Errorf("unexpected candidate %s", candidates[0].Name)
	}
}

func TestFindPartnersAppendsRefinement(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		writeJSON(t, w, searchResponse{})
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	finder := NewPartnerFinder(svc, NewResolver(svc, NewRecordCache()))

	commander := &models.CardRecord{Name: "Wilson, Refined Grizzly", OracleText: "Choose a Background"}
	if _, err := finder.FindPartners(context.Background(), commander, "c:green"); err != nil {
		t.Fatalf("FindPartners failed: %v", err)
	}

	if !strings.HasSuffix(gotQuery, " c:green") {
		t.Errorf("refinement not appended to query: %q", gotQuery)
	}
	if !strings.Contains(gotQuery, "t:background") {
		t.Errorf("expected background template in query: %q", gotQuery)
	}
}

func TestFindPartnersNoMechanic(t *testing.T) {
	// No server: a commander without a pairing mechanic never hits the network.
	svc := newTestService("http://127.0.0.1:0")
	finder := NewPartnerFinder(svc, NewResolver(svc, NewRecordCache()))

	commander := &models.CardRecord{Name: "Atraxa, Praetors' Voice", OracleText: "Flying, vigilance"}
	candidates, err := finder.FindPartners(context.Background(), commander, "")
	if err != nil {
		t.Fatalf("FindPartners failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}
