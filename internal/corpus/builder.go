package corpus

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/wireparity/wireparity/internal/scenario"
)

// Config controls corpus expansion.
type Config struct {
	// SeedText is hashed with DeriveSeed; it drives both the identity
	// rewrites and the final shuffle.
	SeedText string

	// Size is the target corpus size. Must be positive.
	Size int
}

// Build expands the templates into a corpus of exactly cfg.Size
// scenarios: the id-sorted base templates first, then variant passes
// tagged v0001, v0002, … until the target is reached, followed by a
// seeded Fisher-Yates shuffle and truncation.
//
// Variant rewriting touches identity and correlation fields only
// (collection names, session ids, emails, transaction numbers, _id),
// never filter semantics or operator structure, so each variant replays
// the same logical scenario against fresh, non-colliding data.
func Build(templates []*scenario.Scenario, cfg Config) ([]*scenario.Scenario, error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("corpus size must be positive, got %d", cfg.Size)
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("at least one template scenario is required")
	}
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
	}

	seed := DeriveSeed(cfg.SeedText)

	// Stable baseline ordering before any seeded operation.
	base := make([]*scenario.Scenario, len(templates))
	copy(base, templates)
	scenario.SortByID(base)

	corpus := make([]*scenario.Scenario, 0, cfg.Size+len(base))
	for _, t := range base {
		corpus = append(corpus, t.Clone())
	}

	for variant := 1; len(corpus) < cfg.Size; variant++ {
		tag := fmt.Sprintf("v%04d", variant)
		for _, t := range base {
			v, err := mutateTemplate(t, tag, int64(variant), seed)
			if err != nil {
				return nil, fmt.Errorf("template %q variant %s: %w", t.ID, tag, err)
			}
			corpus = append(corpus, v)
			if len(corpus) >= cfg.Size {
				break
			}
		}
	}

	shuffle(corpus, seed)
	return corpus[:cfg.Size], nil
}

// mutateTemplate deep-copies the template and rewrites identity fields
// for the given variant.
func mutateTemplate(t *scenario.Scenario, tag string, variant int64, seed uint64) (*scenario.Scenario, error) {
	out := t.Clone()
	out.ID = t.ID + "_" + tag
	if t.Description != "" {
		out.Description = t.Description + " (variant " + tag + ")"
	}
	for i := range out.Commands {
		rewritten, err := rewriteValue(out.Commands[i].Payload, "", "", tag, variant, seed)
		if err != nil {
			return nil, fmt.Errorf("commands[%d] (%s): %w", i, out.Commands[i].Name, err)
		}
		out.Commands[i].Payload = rewritten.(scenario.Document)
	}
	return out, nil
}

// rewriteValue applies the key-driven, parent-aware rewrite rules:
//
//   - string under "collection"            → append "_<tag>"
//   - string under "id" with parent "lsid" → append "-<tag>"
//   - string under "email"                 → insert "+<tag>" before "@"
//   - number under "txnNumber"             → add variant index
//   - number under "_id"                   → add variant*100000 + seed%10000
//
// Everything else passes through unchanged.
func rewriteValue(v scenario.Value, key, parentKey, tag string, variant int64, seed uint64) (scenario.Value, error) {
	switch val := v.(type) {
	case scenario.String:
		switch {
		case key == "collection":
			return val + scenario.String("_"+tag), nil
		case key == "id" && parentKey == "lsid":
			return val + scenario.String("-"+tag), nil
		case key == "email":
			return rewriteEmail(val, tag), nil
		}
		return val, nil

	case scenario.Number:
		switch key {
		case "txnNumber":
			return val.AddInt(variant)
		case "_id":
			return val.AddInt(variant*100000 + int64(seed%10000))
		}
		return val, nil

	case scenario.Array:
		out := make(scenario.Array, len(val))
		for i, elem := range val {
			// Elements inherit the array's key so "documents" arrays of
			// _id-bearing documents rewrite correctly one level down.
			rewritten, err := rewriteValue(elem, key, parentKey, tag, variant, seed)
			if err != nil {
				return nil, err
			}
			out[i] = rewritten
		}
		return out, nil

	case scenario.Document:
		out := make(scenario.Document, len(val))
		for k, elem := range val {
			rewritten, err := rewriteValue(elem, k, key, tag, variant, seed)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = rewritten
		}
		return out, nil

	default:
		return v, nil
	}
}

func rewriteEmail(email scenario.String, tag string) scenario.String {
	s := string(email)
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return email
	}
	return scenario.String(s[:at] + "+" + tag + s[at:])
}

// shuffle applies a seeded Fisher-Yates shuffle:
// for i from n-1 down to 1, swap(i, randomInt(0..i)).
func shuffle(scenarios []*scenario.Scenario, seed uint64) {
	rng := rand.New(rand.NewSource(int64(seed)))
	for i := len(scenarios) - 1; i >= 1; i-- {
		j := rng.Intn(i + 1)
		scenarios[i], scenarios[j] = scenarios[j], scenarios[i]
	}
}
