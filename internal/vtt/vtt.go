// Package vtt provides WebVTT subtitle parsing.
package vtt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Cue is a single timed subtitle cue.
type Cue struct {
	ID    string
	Start time.Duration
	End   time.Duration
	Text  string
}

// ErrNotWebVTT is returned when the input does not start with a WEBVTT
// header line.
var ErrNotWebVTT = errors.New("vtt: missing WEBVTT header")

// Matches timings like 00:01:02.500 --> 00:01:05.000 (hours optional).
// Cue settings after the end time are ignored.
var timingRe = regexp.MustCompile(`^(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})\s+-->\s+(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})`)

// Parse parses WebVTT from a reader. NOTE and STYLE blocks are skipped;
// cue settings and payload markup are kept as plain text. Cues are
// returned sorted by start time.
func Parse(r io.Reader) ([]Cue, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotWebVTT
	}
	header := strings.TrimPrefix(scanner.Text(), "\uFEFF")
	if header != "WEBVTT" && !strings.HasPrefix(header, "WEBVTT ") && !strings.HasPrefix(header, "WEBVTT\t") {
		return nil, ErrNotWebVTT
	}

	var cues []Cue
	var pending string // candidate cue identifier from the previous line

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if line == "" {
			pending = ""
			continue
		}

		if strings.HasPrefix(line, "NOTE") || line == "STYLE" || line == "REGION" {
			skipBlock(scanner)
			pending = ""
			continue
		}

		m := timingRe.FindStringSubmatch(line)
		if m == nil {
			// A line before a timing line is the cue identifier.
			pending = line
			continue
		}

		cue := Cue{ID: pending}
		pending = ""

		var err error
		cue.Start, err = timestamp(m[1], m[2], m[3], m[4])
		if err == nil {
			cue.End, err = timestamp(m[5], m[6], m[7], m[8])
		}
		if err != nil {
			return nil, fmt.Errorf("vtt: bad timing line %q: %w", line, err)
		}

		var payload []string
		for scanner.Scan() {
			text := strings.TrimRight(scanner.Text(), " \t")
			if text == "" {
				break
			}
			payload = append(payload, text)
		}
		cue.Text = strings.Join(payload, "\n")
		cues = append(cues, cue)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(cues, func(i, j int) bool {
		return cues[i].Start < cues[j].Start
	})

	return cues, nil
}

// skipBlock consumes lines until the blank line that ends the block.
func skipBlock(scanner *bufio.Scanner) {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			return
		}
	}
}

// timestamp assembles a duration from the timing-line capture groups.
// hours may be empty.
func timestamp(hours, minutes, seconds, millis string) (time.Duration, error) {
	var h int
	var err error
	if hours != "" {
		h, err = strconv.Atoi(hours)
		if err != nil {
			return 0, err
		}
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}
