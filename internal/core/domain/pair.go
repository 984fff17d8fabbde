package domain

import "errors"

var ErrSelfPair = errors.New("cannot pair a user with itself")

// Pair is an unordered pair of user ids stored in canonical order (lower id
// first). Canonicalising at construction time makes the pair usable as a
// uniqueness key for matches and blocklist entries regardless of which side
// initiated.
type Pair struct {
	A string `json:"user_a" bson:"user_a"`
	B string `json:"user_b" bson:"user_b"`
}

// NewPair returns the canonical pair for x and y.
func NewPair(x, y string) (Pair, error) {
	if x == y {
		return Pair{}, ErrSelfPair
	}
	if x < y {
		return Pair{A: x, B: y}, nil
	}
	return Pair{A: y, B: x}, nil
}

// Key returns a stable string key for the pair.
func (p Pair) Key() string {
	return p.A + "|" + p.B
}

// Contains reports whether id is one of the pair's members.
func (p Pair) Contains(id string) bool {
	return p.A == id || p.B == id
}

// Other returns the partner of id, or "" when id is not a member.
func (p Pair) Other(id string) string {
	switch id {
	case p.A:
		return p.B
	case p.B:
		return p.A
	default:
		return ""
	}
}
