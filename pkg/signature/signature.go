package signature

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gopherwall/gopherwall/pkg/models"

	"gopkg.in/yaml.v2"
)

// Signature ties an attack name to the literal prefix iptables LOG rule writes for it
type Signature struct {
	Name   string `yaml:"name"`
	Marker string `yaml:"marker"`
}

// List is an ordered signature table. Earlier entries win when several markers match.
type List []Signature

var defaultNames = []string{
	"INVALID_SIZE",
	"MALFORMED",
	"A2S_INFO_FLOOD",
	"A2S_PLAYERS_FLOOD",
	"A2S_RULES_FLOOD",
	"STEAM_GROUP_FLOOD",
	"L4D2_CONNECT_FLOOD",
	"L4D2_RESERVE_FLOOD",
	"UDP_NEW_LIMIT",
	"UDP_EST_LIMIT",
	"TCP_RCON_BLOCK",
	"ICMP_FLOOD",
}

// Defaults returns built-in signatures, marker being "<NAME>: "
func Defaults() List {
	tx := make(List, 0, len(defaultNames))
	for _, name := range defaultNames {
		tx = append(tx, Signature{Name: name, Marker: name + ": "})
	}
	return tx
}

/*
Load reads an ordered signature list from YAML file

  - name: A2S_INFO_FLOOD
    marker: "A2S_INFO_FLOOD: "
*/
func Load(path string) (List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var l List
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("signature YAML parse: %w", err)
	}
	return l, l.Validate()
}

// Dump serializes list to YAML
func (l List) Dump() ([]byte, error) { return yaml.Marshal(l) }

/*
Override returns a copy of list where markers are replaced by values returned by lookup.
Lookup misses keep the existing marker.
*/
func (l List) Override(lookup func(name string) (string, bool)) List {
	tx := make(List, len(l))
	for i, s := range l {
		tx[i] = s
		if marker, ok := lookup(s.Name); ok && marker != "" {
			tx[i].Marker = marker
		}
	}
	return tx
}

// Validate implements a standard interface for checking config struct validity
func (l List) Validate() error {
	if len(l) == 0 {
		return errors.New("empty signature list")
	}
	seen := make(map[string]bool, len(l))
	for i, s := range l {
		if s.Name == "" {
			return fmt.Errorf("signature %d has no name", i)
		}
		if s.Name == models.UnknownAttack {
			return fmt.Errorf("signature %d uses reserved name %s", i, s.Name)
		}
		if strings.TrimSpace(s.Marker) == "" {
			return fmt.Errorf("signature %s has empty marker", s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate signature %s", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// Matcher is a compiled signature list
type Matcher struct {
	names   []string
	markers []string
}

// Compile trims markers once so per-line classification is a plain substring scan
func (l List) Compile() *Matcher {
	m := &Matcher{
		names:   make([]string, 0, len(l)),
		markers: make([]string, 0, len(l)),
	}
	for _, s := range l {
		m.names = append(m.names, s.Name)
		m.markers = append(m.markers, strings.TrimSpace(s.Marker))
	}
	return m
}

// Match returns name of first signature whose marker is found in line, UNKNOWN otherwise
func (m Matcher) Match(line string) string {
	for i, marker := range m.markers {
		if marker != "" && strings.Contains(line, marker) {
			return m.names[i]
		}
	}
	return models.UnknownAttack
}
