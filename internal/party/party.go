package party

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"bitbucket.org/crgw/hotel-hub/internal/platform/errors"
)

// Room is one requested room as sent by the guest.
type Room struct {
	Adults   int   `json:"adults"`
	Children []int `json:"children"`
}

// Group is a set of identical rooms within one request.
type Group struct {
	Adults       int
	ChildrenAges []int
	RoomCount    int

	// Key is the canonical party key, "{adults}[_{age}...]"
	Key string
}

type descriptor struct {
	Adults   int   `json:"adults"`
	Children []int `json:"children"`
}

// Descriptor is the stable JSON form of one room of the group, used for provider queries.
func (g Group) Descriptor() string {
	children := g.ChildrenAges
	if children == nil {
		children = []int{}
	}

	b, _ := json.Marshal(descriptor{Adults: g.Adults, Children: children})
	return string(b)
}

// RateKey ties a provider rate to the party group it was quoted for.
type RateKey struct {
	RateID   string
	PartyKey string
}

func (k RateKey) String() string {
	return k.RateID + "-" + k.PartyKey
}

func canonicalKey(adults int, children []int) string {
	pieces := make([]string, 0, len(children)+1)
	pieces = append(pieces, strconv.Itoa(adults))
	for _, age := range children {
		pieces = append(pieces, strconv.Itoa(age))
	}

	return strings.Join(pieces, "_")
}

// FromSingle builds the groups of a one room request.
func FromSingle(adults int, childrenCSV string) ([]Group, error) {
	children := []int{}

	for _, piece := range strings.Split(childrenCSV, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}

		age, err := strconv.Atoi(piece)
		if err != nil {
			return nil, fmt.Errorf("child age %q: %w", piece, errors.ErrorInvalidPartyFormat)
		}

		children = append(children, age)
	}

	return FromRooms([]Room{{Adults: adults, Children: children}})
}

// FromJSON builds groups from a JSON array of rooms.
func FromJSON(raw string) ([]Group, error) {
	var rooms []Room

	err := json.Unmarshal([]byte(raw), &rooms)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrorInvalidPartyFormat, err.Error())
	}

	return FromRooms(rooms)
}

// FromRooms collapses identical rooms, keeping the order of first occurrence.
func FromRooms(rooms []Room) ([]Group, error) {
	if len(rooms) == 0 {
		return nil, fmt.Errorf("no rooms requested: %w", errors.ErrorInvalidPartyFormat)
	}

	groups := []Group{}
	index := map[string]int{}

	for i, room := range rooms {
		if room.Adults < 1 {
			return nil, fmt.Errorf("room %d has %d adults: %w", i+1, room.Adults, errors.ErrorInvalidPartyFormat)
		}

		for _, age := range room.Children {
			if age < 0 {
				return nil, fmt.Errorf("room %d has child age %d: %w", i+1, age, errors.ErrorInvalidPartyFormat)
			}
		}

		key := canonicalKey(room.Adults, room.Children)

		if position, ok := index[key]; ok {
			groups[position].RoomCount++
			continue
		}

		ages := make([]int, len(room.Children))
		copy(ages, room.Children)

		index[key] = len(groups)
		groups = append(groups, Group{
			Adults:       room.Adults,
			ChildrenAges: ages,
			RoomCount:    1,
			Key:          key,
		})
	}

	return groups, nil
}

// Find returns the group with the given canonical key.
func Find(groups []Group, key string) (Group, bool) {
	for _, group := range groups {
		if group.Key == key {
			return group, true
		}
	}

	return Group{}, false
}
