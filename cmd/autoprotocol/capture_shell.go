package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"autoprotocol/internal/capture"
	"autoprotocol/internal/faults"
	"autoprotocol/internal/protocol"
	"autoprotocol/internal/timepoint"
)

const captureHelp = `Commands:
  <Enter>, t        mark the current time
  a                 add an empty record
  p IDX RANGE       set participants of record IDX (e.g. p 2 1-5,9)
  h IDX             hide record IDX (it is kept for the protocol)
  d IDX             delete record IDX
  l                 list visible records
  s                 stop capturing and review every record
  f [NAME]          finish: store the protocol and end the session
  q                 quit without storing a protocol
  ?                 show this help`

var errUsage = errors.New("usage")

// captureShell drives a Session from line based input. Record indexes are
// one based on the terminal.
type captureShell struct {
	session   *capture.Session
	clock     capture.Clock
	publisher *protocol.Publisher
	out       io.Writer
}

func (s *captureShell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.prompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		done, err := s.exec(ctx, scanner.Text())
		if err != nil {
			s.report(err)
		}
		if done {
			return nil
		}
		s.prompt()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	fmt.Fprintln(s.out)
	s.leave()
	return nil
}

func (s *captureShell) prompt() {
	mode := "capture"
	if s.session.Reviewing() {
		mode = "review"
	}
	fmt.Fprintf(s.out, "%s> ", mode)
}

func (s *captureShell) exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, s.mark()
	}
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "t":
		return false, s.mark()
	case "a":
		idx, err := s.session.Add()
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "#%d added\n", idx+1)
	case "p":
		if len(args) < 2 {
			return false, fmt.Errorf("%w: p IDX RANGE", errUsage)
		}
		idx, err := parseIndex(args[0])
		if err != nil {
			return false, err
		}
		text, err := s.session.SetParticipants(idx, strings.Join(args[1:], " "))
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "#%d participants %s\n", idx+1, text)
	case "h":
		idx, err := singleIndex(args, "h IDX")
		if err != nil {
			return false, err
		}
		if err := s.session.Hide(ctx, idx); err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "#%d hidden (%d hidden so far)\n", idx+1, s.session.Hidden())
	case "d":
		idx, err := singleIndex(args, "d IDX")
		if err != nil {
			return false, err
		}
		if err := s.session.Remove(idx); err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "#%d deleted\n", idx+1)
	case "l":
		s.list()
	case "s":
		return false, s.stop(ctx)
	case "f":
		return s.finish(ctx, strings.Join(args, " "))
	case "q":
		s.leave()
		return true, nil
	case "?", "help":
		fmt.Fprintln(s.out, captureHelp)
	default:
		return false, fmt.Errorf("unknown command %q (type ? for help)", fields[0])
	}
	return false, nil
}

// report prints a command failure, naming its kind when the error carries
// one so input mistakes read differently from storage failures.
func (s *captureShell) report(err error) {
	label := "error"
	if kind := faults.Kind(err); kind != "" {
		label = kind + " error"
	}
	fmt.Fprintf(s.out, "%s: %v\n", label, err)
}

func (s *captureShell) mark() error {
	elapsed := s.clock.Elapsed()
	if elapsed < 0 {
		wait := (time.Duration(-elapsed) * time.Millisecond).Round(100 * time.Millisecond)
		return fmt.Errorf("clock starts in %s", wait)
	}
	idx, err := s.session.Mark(elapsed)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "#%d %s\n", idx+1, timepoint.FormatElapsed(elapsed))
	return nil
}

func (s *captureShell) list() {
	records := s.session.Records()
	if len(records) == 0 {
		fmt.Fprintf(s.out, "No visible records (%d hidden)\n", s.session.Hidden())
		return
	}
	fmt.Fprintln(s.out, renderRecords(records, true))
	if hidden := s.session.Hidden(); hidden > 0 && !s.session.Reviewing() {
		fmt.Fprintf(s.out, "%d hidden\n", hidden)
	}
	if s.session.HasUnready() {
		fmt.Fprintln(s.out, "Some records still need a time or participants")
	}
}

func (s *captureShell) stop(ctx context.Context) error {
	records, err := s.session.Stop(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, renderSectionHeader("Review", false))
	fmt.Fprintln(s.out, renderRecords(records, false))
	return nil
}

func (s *captureShell) finish(ctx context.Context, name string) (bool, error) {
	if !s.session.Reviewing() {
		if _, err := s.session.Stop(ctx); err != nil {
			return false, err
		}
	}
	stored, doc, err := s.publisher.Publish(ctx, name, s.session.Records())
	if err != nil {
		return false, err
	}
	fmt.Fprintf(s.out, "Protocol stored as %s (%d participants)\n", stored, len(doc.Timeline()))
	return true, nil
}

func (s *captureShell) leave() {
	fmt.Fprintln(s.out, "Session ended without storing a protocol")
	if hidden := s.session.Hidden(); hidden > 0 && !s.session.Reviewing() {
		fmt.Fprintf(s.out, "%d hidden records stay pending; run 'autoprotocol protocol build' to publish them\n", hidden)
	}
}

func singleIndex(args []string, usage string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: %s", errUsage, usage)
	}
	return parseIndex(args[0])
}

func parseIndex(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid record number %q", value)
	}
	return n - 1, nil
}

func renderRecords(records []timepoint.Record, withReady bool) string {
	headers := []string{"#", "Time", "Participants"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft}
	if withReady {
		headers = append(headers, "Ready")
	}
	rows := make([][]string, 0, len(records))
	for i, r := range records {
		row := []string{strconv.Itoa(i + 1), r.Clock(), r.Participants}
		if withReady {
			row = append(row, yesNo(r.IsReady()))
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, aligns)
}
