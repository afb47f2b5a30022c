// Package ticker recovers clean ticker symbols from the free-form ticker
// strings upstream feeds produce. Feeds regularly collapse several
// symbols into one token (MARARIOTBTC), so unknown long tokens are
// re-split against a whitelist of known symbols.
package ticker

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Order selects how the whitelist is scanned when re-splitting a
// concatenated token.
type Order string

const (
	// OrderDeclared scans symbols in the order the whitelist declares
	// them. A symbol that is a substring of a later one can shadow it.
	OrderDeclared Order = "declared"
	// OrderLongestFirst scans longer symbols before shorter ones so a
	// short symbol cannot eat part of a longer one.
	OrderLongestFirst Order = "longest-first"
)

// Config is the ticker whitelist configuration. The whitelist is data,
// not logic: swapping it changes which symbols are recognized without
// touching the algorithm.
type Config struct {
	Whitelist []string `yaml:"whitelist"`
	Order     Order    `yaml:"order"`
}

// LoadConfig reads a whitelist config from a YAML file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse ticker config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if len(c.Whitelist) == 0 {
		return fmt.Errorf("ticker whitelist is empty")
	}
	switch c.Order {
	case "", OrderDeclared, OrderLongestFirst:
		return nil
	default:
		return fmt.Errorf("unknown whitelist order %q", c.Order)
	}
}

var splitPattern = regexp.MustCompile(`[,\s/|]+`)

// Normalizer holds an immutable whitelist. Construct one per market
// segment; it is safe for concurrent use and must not be mutated after
// New returns.
type Normalizer struct {
	scan   []string
	member map[string]struct{}
}

// New builds a Normalizer from cfg. Whitelist entries are uppercased,
// trimmed and deduplicated; declared order is preserved unless the
// config asks for longest-first scanning.
func New(cfg Config) *Normalizer {
	n := &Normalizer{member: make(map[string]struct{}, len(cfg.Whitelist))}
	for _, sym := range cfg.Whitelist {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		if _, ok := n.member[sym]; ok {
			continue
		}
		n.member[sym] = struct{}{}
		n.scan = append(n.scan, sym)
	}
	if cfg.Order == OrderLongestFirst {
		sort.SliceStable(n.scan, func(i, j int) bool {
			return len(n.scan[i]) > len(n.scan[j])
		})
	}
	return n
}

// Split returns the recognized symbols in raw, first-seen order, no
// duplicates. Unknown tokens are dropped silently.
func (n *Normalizer) Split(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var tokens []string
	for _, t := range splitPattern.Split(raw, -1) {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			tokens = append(tokens, t)
		}
	}

	var candidates []string
	for _, tok := range tokens {
		if len(tok) <= 4 || n.isKnown(tok) {
			candidates = append(candidates, tok)
			continue
		}
		// Concatenation candidate: pad every whitelist symbol found in
		// the buffer with spaces, collecting the sub-tokens after each
		// hit. The buffer carries padding across symbols, so symbols
		// recovered earlier in the scan surface earlier in the output.
		buf := tok
		for _, sym := range n.scan {
			if !strings.Contains(buf, sym) {
				continue
			}
			buf = strings.ReplaceAll(buf, sym, " "+sym+" ")
			candidates = append(candidates, strings.Fields(buf)...)
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, c := range candidates {
		if !n.isKnown(c) {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Normalize is Split joined with ", ". Empty input and input with no
// recognized symbols both produce "".
func (n *Normalizer) Normalize(raw string) string {
	return strings.Join(n.Split(raw), ", ")
}

func (n *Normalizer) isKnown(sym string) bool {
	_, ok := n.member[sym]
	return ok
}
