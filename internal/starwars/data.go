package starwars

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Episode is a film of the original trilogy.
type Episode int

const (
	NewHope Episode = 4
	Empire  Episode = 5
	Jedi    Episode = 6
)

// ErrNotFound is returned for unknown character ids.
var ErrNotFound = errors.New("not found")

// Human is a person of the saga.
type Human struct {
	ID         string
	Name       string
	FriendIDs  []string
	AppearsIn  []Episode
	HomePlanet string
	// Height in meters.
	Height      float64
	Mass        float64
	StarshipIDs []string
}

func (*Human) GraphQLTypeName() string { return "Human" }

// Droid is a robot of the saga.
type Droid struct {
	ID              string
	Name            string
	FriendIDs       []string
	AppearsIn       []Episode
	PrimaryFunction string
}

func (*Droid) GraphQLTypeName() string { return "Droid" }

// Starship is a vessel flown by humans.
type Starship struct {
	ID     string
	Name   string
	Length float64
}

func (*Starship) GraphQLTypeName() string { return "Starship" }

// Review is a rating left for an episode.
type Review struct {
	Episode    Episode
	Stars      int
	Commentary string
}

// Store holds the saga data. Reviews are the only mutable part.
type Store struct {
	humans    map[string]*Human
	droids    map[string]*Droid
	starships map[string]*Starship

	mu      sync.RWMutex
	reviews map[Episode][]*Review
}

// NewStore returns a store seeded with the characters of the trilogy.
func NewStore() *Store {
	s := &Store{
		humans:    make(map[string]*Human),
		droids:    make(map[string]*Droid),
		starships: make(map[string]*Starship),
		reviews:   make(map[Episode][]*Review),
	}
	all := []Episode{NewHope, Empire, Jedi}
	for _, h := range []*Human{
		{ID: "1000", Name: "Luke Skywalker", FriendIDs: []string{"1002", "1003", "2000", "2001"}, AppearsIn: all, HomePlanet: "Tatooine", Height: 1.72, Mass: 77, StarshipIDs: []string{"3001", "3003"}},
		{ID: "1001", Name: "Darth Vader", FriendIDs: []string{"1004"}, AppearsIn: all, HomePlanet: "Tatooine", Height: 2.02, Mass: 136, StarshipIDs: []string{"3002"}},
		{ID: "1002", Name: "Han Solo", FriendIDs: []string{"1000", "1003", "2001"}, AppearsIn: all, Height: 1.8, Mass: 80, StarshipIDs: []string{"3000", "3003"}},
		{ID: "1003", Name: "Leia Organa", FriendIDs: []string{"1000", "1002", "2000", "2001"}, AppearsIn: all, HomePlanet: "Alderaan", Height: 1.5, Mass: 49},
		{ID: "1004", Name: "Wilhuff Tarkin", FriendIDs: []string{"1001"}, AppearsIn: []Episode{NewHope}, Height: 1.8},
	} {
		s.humans[h.ID] = h
	}
	for _, d := range []*Droid{
		{ID: "2000", Name: "C-3PO", FriendIDs: []string{"1000", "1002", "1003", "2001"}, AppearsIn: all, PrimaryFunction: "Protocol"},
		{ID: "2001", Name: "R2-D2", FriendIDs: []string{"1000", "1002", "1003"}, AppearsIn: all, PrimaryFunction: "Astromech"},
	} {
		s.droids[d.ID] = d
	}
	for _, ss := range []*Starship{
		{ID: "3000", Name: "Millenium Falcon", Length: 34.37},
		{ID: "3001", Name: "X-Wing", Length: 12.5},
		{ID: "3002", Name: "TIE Advanced x1", Length: 9.2},
		{ID: "3003", Name: "Imperial shuttle", Length: 20},
	} {
		s.starships[ss.ID] = ss
	}
	return s
}

// Hero returns the main character of an episode; the saga's hero overall
// when episode is zero.
func (s *Store) Hero(episode Episode) any {
	if episode == Empire {
		return s.humans["1000"]
	}
	return s.droids["2001"]
}

// Character returns the human or droid with the given id.
func (s *Store) Character(id string) (any, error) {
	if h, ok := s.humans[id]; ok {
		return h, nil
	}
	if d, ok := s.droids[id]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("character %q: %w", id, ErrNotFound)
}

// Human returns nil when id is not a human.
func (s *Store) Human(id string) *Human { return s.humans[id] }

// Droid returns nil when id is not a droid.
func (s *Store) Droid(id string) *Droid { return s.droids[id] }

// Starship looks a starship up in the fleet registry, which reports failures
// as gRPC statuses.
func (s *Store) Starship(_ context.Context, id string) (*Starship, error) {
	if ss, ok := s.starships[id]; ok {
		return ss, nil
	}
	return nil, status.Errorf(codes.NotFound, "starship %q not found", id)
}

// Friends resolves friend ids to characters.
func (s *Store) Friends(ids []string) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		if c, err := s.Character(id); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// Search returns every character or starship whose name contains text,
// ignoring case, ordered by id.
func (s *Store) Search(text string) []any {
	text = strings.ToLower(text)
	type hit struct {
		id    string
		value any
	}
	var hits []hit
	for id, h := range s.humans {
		if strings.Contains(strings.ToLower(h.Name), text) {
			hits = append(hits, hit{id, h})
		}
	}
	for id, d := range s.droids {
		if strings.Contains(strings.ToLower(d.Name), text) {
			hits = append(hits, hit{id, d})
		}
	}
	for id, ss := range s.starships {
		if strings.Contains(strings.ToLower(ss.Name), text) {
			hits = append(hits, hit{id, ss})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].id < hits[j].id })
	out := make([]any, len(hits))
	for i, h := range hits {
		out[i] = h.value
	}
	return out
}

// Reviews returns the reviews left for episode, oldest first.
func (s *Store) Reviews(episode Episode) []*Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Review(nil), s.reviews[episode]...)
}

// AddReview records a review.
func (s *Store) AddReview(r *Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[r.Episode] = append(s.reviews[r.Episode], r)
}
