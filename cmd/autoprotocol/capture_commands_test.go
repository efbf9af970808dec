package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"autoprotocol/internal/capture"
	"autoprotocol/internal/timepoint"
)

func TestCaptureAddAndList(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.mustRun(t, "capture", "add", "--at", "1500", "--participants", "3 - 1, 007")
	requireContains(t, out, "Stored 00:00:01.500 3-1,7")
	env.mustRun(t, "capture", "add", "--at", "00:00:00.250", "--participants", "2")

	out = env.mustRun(t, "capture", "list")
	first := strings.Index(out, "00:00:00.250")
	second := strings.Index(out, "00:00:01.500")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected records in time order, got:\n%s", out)
	}

	env.mustRun(t, "capture", "clear")
	out = env.mustRun(t, "capture", "list")
	requireContains(t, out, "No pending records")
}

func TestCaptureAddClampsToEventCeiling(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "event", "new", "--max-participant", "10", "--apply")

	out := env.mustRun(t, "capture", "add", "--at", "1000", "--participants", "5-99")
	requireContains(t, out, "Stored 00:00:01.000 5-10")
}

func TestCaptureAddRejectsBadInput(t *testing.T) {
	env := setupCLITestEnv(t)

	cases := []struct {
		args []string
		want string
	}{
		{[]string{"--at", "soon", "--participants", "1"}, "--at"},
		{[]string{"--at=-5", "--participants", "1"}, "negative"},
		{[]string{"--at", "10", "--participants", "abc"}, "no participant numbers"},
		{[]string{"--at", "10"}, "participants"},
	}
	for _, tc := range cases {
		_, err := env.run(t, append([]string{"capture", "add"}, tc.args...)...)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("args %v: expected error containing %q, got %v", tc.args, tc.want, err)
		}
	}
}

func TestCaptureSessionRequiresActiveConfigurations(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"capture"}, env.configPath, "q\n")
	if !errors.Is(err, errNoActiveEvent) {
		t.Fatalf("expected errNoActiveEvent, got %v", err)
	}

	env.mustRun(t, "event", "new", "--apply")
	_, _, err = runCLI(t, []string{"capture"}, env.configPath, "q\n")
	if !errors.Is(err, errNoActivePoint) {
		t.Fatalf("expected errNoActivePoint, got %v", err)
	}
}

func TestCaptureSessionFinishesProtocol(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "event", "new", "--name", "Relay", "--manual-sync-delay", "0", "--apply")
	env.mustRun(t, "point", "set", "4")

	input := strings.Join([]string{
		"",
		"t",
		"p 1 1-2",
		"p 2 3",
		"h 1",
		"l",
		"f relay",
	}, "\n") + "\n"
	out, _, err := runCLI(t, []string{"capture"}, env.configPath, input)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	requireContains(t, out, "Relay, point 4")
	requireContains(t, out, "#1 participants 1-2")
	requireContains(t, out, "#1 hidden (1 hidden so far)")
	requireContains(t, out, "1 hidden")
	requireContains(t, out, "Protocol stored as relay.apd (3 participants)")

	out = env.mustRun(t, "protocol", "show", "relay")
	requireContains(t, out, "Relay")
	requireContains(t, out, "Point Id")

	// Publishing clears the active configurations and pending records.
	out = env.mustRun(t, "event", "show")
	requireContains(t, out, "No active event configuration")
	out = env.mustRun(t, "capture", "list")
	requireContains(t, out, "No pending records")
}

func TestCaptureSessionQuitKeepsHiddenRecords(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "event", "new", "--manual-sync-delay", "0", "--apply")
	env.mustRun(t, "point", "set", "1")

	out, _, err := runCLI(t, []string{"capture"}, env.configPath, "t\np 1 8\nh 1\nt\nq\n")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	requireContains(t, out, "Session ended without storing a protocol")
	requireContains(t, out, "1 hidden records stay pending")

	pending, err := capture.Pending(context.Background(), env.openStore(t))
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Participants != "8" {
		t.Fatalf("unexpected pending records: %+v", pending)
	}
}

func TestCaptureSessionReportsErrorsAndContinues(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "event", "new", "--manual-sync-delay", "0", "--apply")
	env.mustRun(t, "point", "set", "2")

	input := "x\nh 5\np 1\nd zero\na\np 1 99999999999999999999\nh 1\nf\ns\n?\n"
	out, _, err := runCLI(t, []string{"capture"}, env.configPath, input)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	for _, want := range []string{
		`unknown command "x"`,
		"record index out of range",
		"usage: p IDX RANGE",
		`invalid record number "zero"`,
		"#1 added",
		"parse error:",
		"record is not ready",
		"Commands:",
		"Session ended without storing a protocol",
	} {
		requireContains(t, out, want)
	}
	if strings.Contains(out, "Protocol stored") {
		t.Fatalf("nothing should be stored:\n%s", out)
	}
}

func TestCaptureSessionReviewIncludesEarlierPendingRecords(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "event", "new", "--manual-sync-delay", "0", "--apply")
	env.mustRun(t, "point", "set", "3")
	env.mustRun(t, "capture", "add", "--at", "0", "--participants", "42")

	out, _, err := runCLI(t, []string{"capture"}, env.configPath, "t\np 1 1\ns\na\nf\n")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	requireContains(t, out, "== Review ==")
	requireContains(t, out, "00:00:00.000")
	requireContains(t, out, "42")
	requireContains(t, out, capture.ErrReviewMode.Error())
	requireContains(t, out, "Protocol stored as protocol_")
}

func TestParseElapsed(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"1500", 1500},
		{"00:00:01.500", 1500},
		{"01:02:03", 3723000},
		{" 12:00:00.001 ", 43200001},
	}
	for _, tc := range cases {
		got, err := parseElapsed(tc.in)
		if err != nil {
			t.Fatalf("parseElapsed(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parseElapsed(%q) = %d, want %d", tc.in, got, tc.want)
		}
		if tc.in == "1500" && timepoint.FormatElapsed(got) != "00:00:01.500" {
			t.Fatalf("unexpected clock for %d", got)
		}
	}
	for _, bad := range []string{"", "-1", "1.5", "25:00:00"} {
		if _, err := parseElapsed(bad); err == nil {
			t.Fatalf("parseElapsed(%q) should fail", bad)
		}
	}
}
