package participants_test

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"autoprotocol/internal/faults"
	"autoprotocol/internal/participants"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"1-3,5", "1-3,5"},
		{" 1 2  3 ", "1,2,3"},
		{"1 - 3", "1-3"},
		{"007, 010", "7,10"},
		{"1,,2", "1,2"},
		{"1,-3", "1-3"},
		{",5-", "5"},
		{"5,0,6", "5,6"},
		{"abc", ""},
		{"0", ""},
		{"", ""},
		{"12a-b15", "12-15"},
	}
	for _, tc := range cases {
		if got := participants.Sanitize(tc.raw); got != tc.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestClampComparesParsedNumbers(t *testing.T) {
	cases := []struct {
		text    string
		ceiling int
		want    string
	}{
		{"1-150,7", 100, "1-100,7"},
		{"11,111", 10, "10,10"},
		{"5,10", 10, "5,10"},
		{"3-400", 0, "3-400"},
		{"99999999999999999999", 50, "50"},
		{"", 10, ""},
	}
	for _, tc := range cases {
		if got := participants.Clamp(tc.text, tc.ceiling); got != tc.want {
			t.Errorf("Clamp(%q, %d) = %q, want %q", tc.text, tc.ceiling, got, tc.want)
		}
	}
}

func TestExpandIsOrderIndependent(t *testing.T) {
	a, err := participants.Expand("1-3,5")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	b, err := participants.Expand("5,1-3")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := []int{1, 2, 3, 5}
	if diff := cmp.Diff(want, a.Sorted()); diff != "" {
		t.Fatalf("unexpected expansion (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(a.Sorted(), b.Sorted()); diff != "" {
		t.Fatalf("token order changed expansion (-first +second):\n%s", diff)
	}
}

func TestExpandSwapsReversedPairs(t *testing.T) {
	for _, pair := range [][2]string{{"4-7", "7-4"}, {"9-9", "9-9"}, {"1-12", "12-1"}} {
		forward, err := participants.Expand(pair[0])
		if err != nil {
			t.Fatalf("Expand(%q): %v", pair[0], err)
		}
		reverse, err := participants.Expand(pair[1])
		if err != nil {
			t.Fatalf("Expand(%q): %v", pair[1], err)
		}
		if diff := cmp.Diff(forward.Sorted(), reverse.Sorted()); diff != "" {
			t.Fatalf("%q and %q differ (-a +b):\n%s", pair[0], pair[1], diff)
		}
	}
}

func TestExpandCoalescesOverlaps(t *testing.T) {
	set, err := participants.Expand("2,2,1-2,2-3")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, set.Sorted()); diff != "" {
		t.Fatalf("unexpected set (-want +got):\n%s", diff)
	}
	if !set.Contains(3) || set.Contains(4) {
		t.Fatalf("Contains reported wrong membership for %v", set.Sorted())
	}
}

func TestExpandEmptyText(t *testing.T) {
	set, err := participants.Expand("")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected empty set, got %v", set.Sorted())
	}
}

func TestExpandRejectsMalformedTokens(t *testing.T) {
	cases := []struct {
		text  string
		token string
	}{
		{"1-2-3", "1-2-3"},
		{"a", "a"},
		{"1,,2", ""},
		{"4,+5", "+5"},
		{"3-", "3-"},
	}
	for _, tc := range cases {
		_, err := participants.Expand(tc.text)
		var parseErr *faults.ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("Expand(%q) error = %v, want ParseError", tc.text, err)
		}
		if parseErr.Token != tc.token {
			t.Fatalf("Expand(%q) token = %q, want %q", tc.text, parseErr.Token, tc.token)
		}
	}
}

func TestExpandReportsOverflow(t *testing.T) {
	_, err := participants.Expand("99999999999999999999")
	if !errors.Is(err, strconv.ErrRange) {
		t.Fatalf("expected range error, got %v", err)
	}
	if faults.Kind(err) != faults.KindParse {
		t.Fatalf("expected parse kind, got %q", faults.Kind(err))
	}
}

func TestNormalize(t *testing.T) {
	got, err := participants.Normalize("  1 - 3 , 150", 100)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != "1-3,100" {
		t.Fatalf("Normalize = %q, want %q", got, "1-3,100")
	}

	if _, err := participants.Normalize("1-2-3", 0); faults.Kind(err) != faults.KindParse {
		t.Fatalf("expected parse error for chained range, got %v", err)
	}
}

func TestExpandRangeEndingAtMaxInt(t *testing.T) {
	top := strconv.Itoa(math.MaxInt)
	below := strconv.Itoa(math.MaxInt - 2)

	cases := []struct {
		text string
		want []int
	}{
		{top, []int{math.MaxInt}},
		{below + "-" + top, []int{math.MaxInt - 2, math.MaxInt - 1, math.MaxInt}},
		{top + "-" + below, []int{math.MaxInt - 2, math.MaxInt - 1, math.MaxInt}},
	}
	for _, tc := range cases {
		set, err := participants.Expand(tc.text)
		if err != nil {
			t.Fatalf("Expand(%q): %v", tc.text, err)
		}
		if diff := cmp.Diff(tc.want, set.Sorted()); diff != "" {
			t.Fatalf("Expand(%q) mismatch (-want +got):\n%s", tc.text, diff)
		}
	}
}

func TestNormalizeAcceptsWideRangesWithoutExpanding(t *testing.T) {
	wide := "1-" + strconv.Itoa(math.MaxInt)
	got, err := participants.Normalize(wide, 0)
	if err != nil {
		t.Fatalf("Normalize(%q): %v", wide, err)
	}
	if got != wide {
		t.Fatalf("Normalize(%q) = %q", wide, got)
	}
	if err := participants.Validate("1,2-x"); faults.Kind(err) != faults.KindParse {
		t.Fatalf("expected parse error, got %v", err)
	}
	if err := participants.Validate(""); err != nil {
		t.Fatalf("Validate(\"\"): %v", err)
	}
}
