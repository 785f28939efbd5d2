package service

import (
	"context"
	"errors"
	"math/rand"
	"strings"

	"github.com/rferrer/steady/internal/storage"
)

// Word lists for candidate room codes. Codes built from these are memorable,
// not secret; availability and the admission rules are the only checks.
var (
	suggestAdjectives = []string{
		"BOLD", "CALM", "EAGER", "FIRM", "KEEN",
		"QUIET", "SOLID", "STEEL", "SWIFT", "TRUE",
	}
	suggestNouns = []string{
		"ANCHOR", "CREW", "FLINT", "FORGE", "GRIT",
		"LEDGER", "OAK", "PACT", "SUMMIT", "VAULT",
	}
)

const (
	defaultSuggestions = 5
	maxSuggestions     = 10
	suggestAttempts    = 4 // per candidate, before giving up on a collision
)

// SuggestService generates and validates candidate room codes. Nothing here
// is security-sensitive: math/rand is deliberate.
type SuggestService struct {
	store storage.Store
}

// NewSuggestService creates a SuggestService over the given store.
func NewSuggestService(store storage.Store) *SuggestService {
	return &SuggestService{store: store}
}

// Suggest returns up to count available candidate codes. Candidates that
// collide with existing rooms or the reserved set are re-rolled a few times
// and then skipped.
func (s *SuggestService) Suggest(ctx context.Context, count int) ([]string, error) {
	if count <= 0 {
		count = defaultSuggestions
	}
	if count > maxSuggestions {
		count = maxSuggestions
	}

	seen := make(map[string]struct{})
	var out []string
	for len(out) < count {
		var candidate string
		found := false
		for attempt := 0; attempt < suggestAttempts; attempt++ {
			candidate = suggestAdjectives[rand.Intn(len(suggestAdjectives))] +
				suggestNouns[rand.Intn(len(suggestNouns))]
			if len(candidate) > roomCodeMaxLen {
				candidate = candidate[:roomCodeMaxLen]
			}
			if _, dup := seen[candidate]; dup {
				continue
			}
			if _, err := NormalizeRoomCode(candidate); err != nil {
				continue
			}
			room, err := s.store.GetRoom(ctx, candidate)
			if err != nil {
				return nil, err
			}
			if room == nil {
				found = true
				break
			}
		}
		if !found {
			// Word space nearly exhausted; return what we have.
			break
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}
	return out, nil
}

// Validation is the outcome of checking one candidate code.
type Validation struct {
	Code      string
	Valid     bool
	Available bool
	ErrorCode string
}

// Validate runs a candidate through the admission rules and an availability
// check without creating anything.
func (s *SuggestService) Validate(ctx context.Context, candidate string) (*Validation, error) {
	code, err := NormalizeRoomCode(candidate)
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return &Validation{
				Code:      strings.ToUpper(strings.TrimSpace(candidate)),
				ErrorCode: svcErr.Code,
			}, nil
		}
		return nil, err
	}

	room, err := s.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	return &Validation{
		Code:      code,
		Valid:     true,
		Available: room == nil,
	}, nil
}
