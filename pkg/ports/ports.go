package ports

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gopherwall/gopherwall/pkg/models"
)

const maxPort = 65535

// Set is a collection of destination ports
type Set map[int]bool

/*
Expand parses a port expression made of comma separated single ports and colon delimited
inclusive ranges, e.g. "27015,27020:27030". Empty expression yields an empty set.
*/
func Expand(expr string) (Set, error) {
	s := make(Set)
	if strings.TrimSpace(expr) == "" {
		return s, nil
	}
	for _, raw := range strings.Split(expr, ",") {
		part := strings.TrimSpace(raw)
		if part == "" {
			return nil, fmt.Errorf("empty element in port list %q", expr)
		}
		bits := strings.Split(part, ":")
		switch len(bits) {
		case 1:
			port, err := parsePort(bits[0])
			if err != nil {
				return nil, err
			}
			s[port] = true
		case 2:
			start, err := parsePort(bits[0])
			if err != nil {
				return nil, err
			}
			end, err := parsePort(bits[1])
			if err != nil {
				return nil, err
			}
			if start > end {
				return nil, fmt.Errorf("%s not valid port range, start is after end", part)
			}
			for p := start; p <= end; p++ {
				s[p] = true
			}
		default:
			return nil, fmt.Errorf("%s not valid port format, should be <port> or <start>:<end>", part)
		}
	}
	return s, nil
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", raw, err)
	}
	if port < 0 || port > maxPort {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}

// Contains reports set membership
func (s Set) Contains(port int) bool { return s[port] }

// Sorted returns set members in ascending order
func (s Set) Sorted() []int {
	tx := make([]int, 0, len(s))
	for p := range s {
		tx = append(tx, p)
	}
	sort.Ints(tx)
	return tx
}

// Classifier assigns a role to destination ports. Game server ports take precedence.
type Classifier struct {
	Game Set
	TV   Set
}

// NewClassifier expands both port expressions into a Classifier
func NewClassifier(game, tv string) (*Classifier, error) {
	gs, err := Expand(game)
	if err != nil {
		return nil, fmt.Errorf("game server ports: %w", err)
	}
	ts, err := Expand(tv)
	if err != nil {
		return nil, fmt.Errorf("sourcetv ports: %w", err)
	}
	return &Classifier{Game: gs, TV: ts}, nil
}

// Classify returns role of port
func (c Classifier) Classify(port int) models.PortRole {
	switch {
	case c.Game.Contains(port):
		return models.RoleGameServer
	case c.TV.Contains(port):
		return models.RoleSourceTV
	default:
		return models.RoleOther
	}
}
