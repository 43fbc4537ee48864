package services

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strconv"
	"sync"
)

// multiCopyQuery finds every card whose rules text lifts the one-copy-per-name
// deck constraint.
const multiCopyQuery = `o:"A deck can have" o:"cards named"`

var (
	anyNumberRe = regexp.MustCompile(`(?i)any number of cards named`)
	upToRe      = regexp.MustCompile(`(?i)up to ([a-z]+|\d+) cards named`)
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
}

// CopyAllowance is one card's exception to the one-copy rule. A nil Cap means
// any number of copies is permitted.
type CopyAllowance struct {
	Cap *int
}

// MultiCopySet maps card names to their copy allowance, built once per session
// from parsed rules text and treated as immutable after the first successful
// build.
type MultiCopySet struct {
	scryfall *ScryfallService

	mu    sync.Mutex
	caps  map[string]CopyAllowance // folded name -> allowance
	built bool
}

func NewMultiCopySet(scryfall *ScryfallService) *MultiCopySet {
	return &MultiCopySet{
		scryfall: scryfall,
	}
}

// Allowance returns the copy allowance for the named card. ok is false for
// cards bound by the default one-copy rule.
func (m *MultiCopySet) Allowance(ctx context.Context, name string) (CopyAllowance, bool, error) {
	caps, err := m.ensureBuilt(ctx)
	if err != nil {
		return CopyAllowance{}, false, err
	}
	allowance, ok := caps[foldName(name)]
	return allowance, ok, nil
}

// All returns the full capability map keyed by folded card name.
func (m *MultiCopySet) All(ctx context.Context) (map[string]CopyAllowance, error) {
	return m.ensureBuilt(ctx)
}

func (m *MultiCopySet) ensureBuilt(ctx context.Context) (map[string]CopyAllowance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.built {
		return m.caps, nil
	}

	cards, err := m.scryfall.SearchAllCards(ctx, multiCopyQuery, SearchOptions{Order: "name"})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		cards = nil
	}

	caps := make(map[string]CopyAllowance, len(cards))
	for _, card := range cards {
		allowance, ok := ParseCopyAllowance(card.FullOracleText())
		if !ok {
			continue
		}
		caps[foldName(card.Name)] = allowance
	}

	m.caps = caps
	m.built = true
	log.Printf("Multi-copy: capability map built with %d cards", len(caps))
	return m.caps, nil
}

// ParseCopyAllowance scans rules text for the two patterns that lift the
// one-copy constraint: "any number of cards named" (unlimited) and
// "up to <number> cards named" (bounded, number word or digits). ok is false
// when the text carries neither pattern.
func ParseCopyAllowance(text string) (CopyAllowance, bool) {
	if anyNumberRe.MatchString(text) {
		return CopyAllowance{}, true
	}

	match := upToRe.FindStringSubmatch(text)
	if match == nil {
		return CopyAllowance{}, false
	}

	word := match[1]
	n, err := strconv.Atoi(word)
	if err != nil {
		var ok bool
		n, ok = numberWords[foldName(word)]
		if !ok {
			return CopyAllowance{}, false
		}
	}
	return CopyAllowance{Cap: &n}, true
}
