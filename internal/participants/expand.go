package participants

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"autoprotocol/internal/faults"
)

var errNotNumber = errors.New("not a non-negative integer")

// Set is a set of participant numbers.
type Set map[int]struct{}

// Contains reports whether id is in the set.
func (s Set) Contains(id int) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Expand converts comma separated tokens, each a number or an inclusive
// "a-b" pair, into the set of participant numbers they name. Pair endpoints
// may be given in either order. Empty text yields an empty set.
func Expand(text string) (Set, error) {
	set := Set{}
	if text == "" {
		return set, nil
	}
	for _, token := range strings.Split(text, ",") {
		low, high, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		// id == high ends the loop so a range ending at MaxInt cannot wrap.
		for id := low; ; id++ {
			set[id] = struct{}{}
			if id == high {
				break
			}
		}
	}
	return set, nil
}

// Validate reports the first malformed token of text without building the
// set, so wide ranges cost nothing.
func Validate(text string) error {
	if text == "" {
		return nil
	}
	for _, token := range strings.Split(text, ",") {
		if _, _, err := parseToken(token); err != nil {
			return err
		}
	}
	return nil
}

func parseToken(token string) (int, int, error) {
	left, right, isPair := strings.Cut(token, "-")
	low, err := parseNumber(left)
	if err != nil {
		return 0, 0, &faults.ParseError{Token: token, Err: err}
	}
	if !isPair {
		return low, low, nil
	}
	high, err := parseNumber(right)
	if err != nil {
		return 0, 0, &faults.ParseError{Token: token, Err: err}
	}
	if low > high {
		low, high = high, low
	}
	return low, high, nil
}

func parseNumber(s string) (int, error) {
	if s == "" {
		return 0, errNotNumber
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, errNotNumber
		}
	}
	return strconv.Atoi(s)
}
