package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cardforge/deck-builder/backend/internal/models"
)

// PartnerMechanic classifies how a commander can be paired with a second
// commander. Each variant maps to one fixed catalog query; adding a variant
// without extending partnerQuery is caught by its exhaustive switch.
type PartnerMechanic int

const (
	MechanicNone PartnerMechanic = iota
	MechanicPartner
	MechanicPartnerWith
	MechanicFriendsForever
	MechanicChooseBackground
	MechanicBackground
	MechanicDoctorsCompanion
	MechanicDoctor
)

func (m PartnerMechanic) String() string {
	switch m {
	case MechanicNone:
		return "none"
	case MechanicPartner:
		return "partner"
	case MechanicPartnerWith:
		return "partner-with"
	case MechanicFriendsForever:
		return "friends-forever"
	case MechanicChooseBackground:
		return "choose-background"
	case MechanicBackground:
		return "background"
	case MechanicDoctorsCompanion:
		return "doctors-companion"
	case MechanicDoctor:
		return "doctor"
	default:
		return "unknown"
	}
}

var partnerWithRe = regexp.MustCompile(`Partner with ([^(\n]+)`)

// ClassifyPartnerMechanic inspects a commander's type line and rules text and
// returns its pairing mechanic plus, for "Partner with", the named partner.
func ClassifyPartnerMechanic(record *models.CardRecord) (PartnerMechanic, string) {
	if record == nil {
		return MechanicNone, ""
	}

	text := record.FullOracleText()
	typeLine := record.TypeLine

	switch {
	case partnerWithRe.MatchString(text):
		match := partnerWithRe.FindStringSubmatch(text)
		return MechanicPartnerWith, strings.TrimSpace(match[1])
	case strings.Contains(text, "Friends forever"):
		return MechanicFriendsForever, ""
	case strings.Contains(text, "Doctor's companion"):
		return MechanicDoctorsCompanion, ""
	case strings.Contains(text, "Choose a Background"):
		return MechanicChooseBackground, ""
	case strings.Contains(typeLine, "Background"):
		return MechanicBackground, ""
	case strings.Contains(typeLine, "Time Lord Doctor"):
		return MechanicDoctor, ""
	case strings.Contains(text, "Partner"):
		return MechanicPartner, ""
	default:
		return MechanicNone, ""
	}
}

// partnerQuery returns the catalog query template for a mechanic. It returns
// ok=false for the two variants that never translate into a search: None has
// no partners, and PartnerWith is a direct exact-name lookup.
func partnerQuery(mechanic PartnerMechanic) (string, bool) {
	switch mechanic {
	case MechanicPartner:
		return `is:commander o:"partner" -o:"partner with"`, true
	case MechanicFriendsForever:
		return `is:commander o:"friends forever"`, true
	case MechanicChooseBackground:
		return `t:background`, true
	case MechanicBackground:
		return `is:commander o:"choose a background"`, true
	case MechanicDoctorsCompanion:
		return `t:"time lord doctor"`, true
	case MechanicDoctor:
		return `is:commander o:"doctor's companion"`, true
	case MechanicNone, MechanicPartnerWith:
		return "", false
	default:
		return "", false
	}
}

// PartnerFinder translates a commander's pairing mechanic into candidate
// partner lookups.
type PartnerFinder struct {
	scryfall *ScryfallService
	resolver *Resolver
}

func NewPartnerFinder(scryfall *ScryfallService, resolver *Resolver) *PartnerFinder {
	return &PartnerFinder{
		scryfall: scryfall,
		resolver: resolver,
	}
}

// FindPartners returns legal partner candidates for the commander, excluding
// the commander itself. refinement, when non-empty, is appended verbatim to
// the templated query. A commander with no pairing mechanic gets an empty
// candidate list.
func (f *PartnerFinder) FindPartners(ctx context.Context, commander *models.CardRecord, refinement string) ([]models.CardRecord, error) {
	if commander == nil {
		return nil, nil
	}

	mechanic, partnerName := ClassifyPartnerMechanic(commander)

	// "Partner with" names its partner outright; a search would only add
	// noise around the one legal answer.
	if mechanic == MechanicPartnerWith {
		record, err := f.resolver.Resolve(ctx, partnerName)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, nil
		}
		return []models.CardRecord{*record}, nil
	}

	query, ok := partnerQuery(mechanic)
	if !ok {
		return nil, nil
	}
	if refinement != "" {
		query = fmt.Sprintf("%s %s", query, refinement)
	}

	cards, err := f.scryfall.SearchAllCards(ctx, query, SearchOptions{Order: "edhrec"})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	candidates := make([]models.CardRecord, 0, len(cards))
	for _, card := range cards {
		if card.Name == commander.Name {
			continue
		}
		candidates = append(candidates, card)
	}
	return candidates, nil
}
