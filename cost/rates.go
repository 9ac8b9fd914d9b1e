package cost

import (
	_ "embed"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed rates.yaml
var embeddedRates []byte

// Unit names the unit a rate table is quoted in.
type Unit string

const (
	UnitCentsPerMinute          Unit = "cents_per_minute"
	UnitDollarsPerMinute        Unit = "dollars_per_minute"
	UnitDollarsPerMillionTokens Unit = "dollars_per_million_tokens"
)

// Kind selects between transcription and LLM rate tables.
type Kind string

const (
	KindTranscription Kind = "transcription"
	KindLLM           Kind = "llm"
)

// LLMRate holds per-million-token prices in dollars.
type LLMRate struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

type ratesFile struct {
	Transcription map[string]minuteTable `yaml:"transcription"`
	LLM           map[string]tokenTable  `yaml:"llm"`
}

type minuteTable struct {
	Unit   Unit               `yaml:"unit"`
	Models map[string]float64 `yaml:"models"`
}

type tokenTable struct {
	Unit   Unit               `yaml:"unit"`
	Models map[string]LLMRate `yaml:"models"`
}

// Load parses rate tables from r and converts every figure to dollars.
func Load(r io.Reader) (*Estimator, error) {
	var rf ratesFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil {
		return nil, fmt.Errorf("cost: decode rate tables: %w", err)
	}

	e := &Estimator{
		transcription: make(map[string]map[string]float64, len(rf.Transcription)),
		llm:           make(map[string]map[string]LLMRate, len(rf.LLM)),
	}

	for provider, table := range rf.Transcription {
		var factor float64
		switch table.Unit {
		case UnitCentsPerMinute:
			factor = 0.01
		case UnitDollarsPerMinute:
			factor = 1
		default:
			return nil, fmt.Errorf("cost: transcription table %q: unsupported unit %q", provider, table.Unit)
		}
		models := make(map[string]float64, len(table.Models))
		for model, rate := range table.Models {
			if rate < 0 {
				return nil, fmt.Errorf("cost: transcription table %q: negative rate for %q", provider, model)
			}
			models[model] = rate * factor
		}
		e.transcription[provider] = models
	}

	for provider, table := range rf.LLM {
		if table.Unit != UnitDollarsPerMillionTokens {
			return nil, fmt.Errorf("cost: llm table %q: unsupported unit %q", provider, table.Unit)
		}
		models := make(map[string]LLMRate, len(table.Models))
		for model, rate := range table.Models {
			if rate.Input < 0 || rate.Output < 0 {
				return nil, fmt.Errorf("cost: llm table %q: negative rate for %q", provider, model)
			}
			models[model] = rate
		}
		e.llm[provider] = models
	}

	return e, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
