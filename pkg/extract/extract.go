/*
Copyright © 2025 Stamus Networks oss@stamus-networks.com

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package extract

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gopherwall/gopherwall/pkg/fs"
	"github.com/gopherwall/gopherwall/pkg/models"
	"github.com/gopherwall/gopherwall/pkg/ports"
	"github.com/gopherwall/gopherwall/pkg/signature"

	"github.com/sirupsen/logrus"
)

// MaxLineLength is the longest line considered for matching, longer lines are drained and dropped
const MaxLineLength = 1 << 20

const stampLayout = "2006 Jan 2 15:04:05"

var (
	reTimestamp = regexp.MustCompile(`^(\w+\s+\d+\s+\d+:\d+:\d+)`)
	reSource    = regexp.MustCompile(`SRC=(\S+)`)
	reDestPort  = regexp.MustCompile(`DPT=(\d+)`)
	reLength    = regexp.MustCompile(`LEN=(\d+)`)
	reProtocol  = regexp.MustCompile(`PROTO=(\S+)`)
)

// ErrMissingFile is returned when log file does not exist
type ErrMissingFile struct {
	Path string
	Err  error
}

func (e ErrMissingFile) Error() string { return fmt.Sprintf("log file not found: %s", e.Path) }
func (e ErrMissingFile) Unwrap() error { return e.Err }

// Config holds params needed by Extract
type Config struct {
	Ports      ports.Classifier
	Signatures signature.List
	// Year is combined with year-less syslog timestamps, current year when zero
	Year int
}

/*
Validate implements a standard interface for checking config struct validity and setting
sane default values.
*/
func (c Config) Validate() error {
	if err := c.Signatures.Validate(); err != nil {
		return err
	}
	if c.Year < 0 || c.Year > 9999 {
		return fmt.Errorf("invalid year %d", c.Year)
	}
	return nil
}

// Stats counts what happened to each line of the input
type Stats struct {
	Lines     int `json:"lines"`
	Events    int `json:"events"`
	Skipped   int `json:"skipped"`
	Oversized int `json:"oversized"`
}

/*
Extract parses a firewall log file into events. File may be plain text or gzip compressed.
Lines missing timestamp, source address, destination port or length are skipped.
*/
func Extract(path string, c Config) ([]models.Event, Stats, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Stats{}, ErrMissingFile{Path: path, Err: err}
		}
		return nil, Stats{}, err
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer f.Close()

	start := time.Now()
	events, stats, err := Parse(f, c)
	if err != nil {
		return events, stats, fmt.Errorf("%s: %w", path, err)
	}
	logrus.
		WithField("path", path).
		WithField("lines", stats.Lines).
		WithField("events", stats.Events).
		WithField("skipped", stats.Skipped).
		WithField("took", time.Since(start)).
		Debug("log parsed")
	return events, stats, nil
}

// Parse reads lines from r and converts every well formed one into an Event
func Parse(r io.Reader, c Config) ([]models.Event, Stats, error) {
	if err := c.Validate(); err != nil {
		return nil, Stats{}, err
	}
	p := &parser{
		ports:   c.Ports,
		matcher: c.Signatures.Compile(),
		year:    c.Year,
	}
	if p.year == 0 {
		p.year = time.Now().Year()
	}

	var (
		stats     Stats
		events    = make([]models.Event, 0)
		buf       = make([]byte, 0, 4096)
		oversized bool
	)
	reader := bufio.NewReaderSize(r, 64*1024)

	consume := func() {
		seq := stats.Lines
		stats.Lines++
		if oversized {
			stats.Oversized++
			stats.Skipped++
			return
		}
		ev, ok := p.line(string(bytes.TrimRight(buf, "\r\n")))
		if !ok {
			stats.Skipped++
			return
		}
		ev.Seq = seq
		events = append(events, ev)
		stats.Events++
	}

	for {
		chunk, err := reader.ReadSlice('\n')
		if !oversized {
			if len(buf)+len(chunk) > MaxLineLength {
				oversized = true
				buf = buf[:0]
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err == nil || (errors.Is(err, io.EOF) && (len(buf) > 0 || oversized)) {
			consume()
			buf = buf[:0]
			oversized = false
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return events, stats, nil
			}
			return events, stats, err
		}
	}
}

type parser struct {
	ports   ports.Classifier
	matcher *signature.Matcher
	year    int
}

func (p parser) line(line string) (models.Event, bool) {
	stamp := reTimestamp.FindStringSubmatch(line)
	if stamp == nil {
		return models.Event{}, false
	}
	ts, err := p.timestamp(stamp[1])
	if err != nil {
		return models.Event{}, false
	}

	src := reSource.FindStringSubmatch(line)
	dpt := reDestPort.FindStringSubmatch(line)
	lengths := reLength.FindAllStringSubmatch(line, -1)
	if src == nil || dpt == nil || len(lengths) == 0 {
		return models.Event{}, false
	}
	port, err := strconv.Atoi(dpt[1])
	if err != nil || port > 65535 {
		return models.Event{}, false
	}
	// nested or retried headers repeat LEN, last one is authoritative
	length, err := strconv.Atoi(lengths[len(lengths)-1][1])
	if err != nil {
		return models.Event{}, false
	}

	ev := models.Event{
		SourceIP:   src[1],
		DestPort:   port,
		PortRole:   p.ports.Classify(port),
		AttackType: p.matcher.Match(line),
		Length:     length,
		Timestamp:  ts,
	}
	if proto := reProtocol.FindStringSubmatch(line); proto != nil {
		ev.Protocol = protocolName(proto[1])
	}
	return ev, true
}

func (p parser) timestamp(raw string) (time.Time, error) {
	return time.ParseInLocation(
		stampLayout,
		strconv.Itoa(p.year)+" "+strings.Join(strings.Fields(raw), " "),
		time.UTC,
	)
}
