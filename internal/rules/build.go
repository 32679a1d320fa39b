package rules

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/bank2qif/internal/config"
)

// Build converts rule definitions from the config file into Rules, keeping
// their order.
func Build(defs []config.Rule) ([]Rule, error) {
	out := make([]Rule, 0, len(defs))
	for i, def := range defs {
		r, err := build(def)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, def.Match, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func build(def config.Rule) (Rule, error) {
	if def.Account == "" {
		return nil, errors.New("account is required")
	}

	switch def.Match {
	case config.MatchAccountCode:
		if def.Code == "" {
			return nil, errors.New("code is required")
		}
		return &ByAccountCode{Code: def.Code, Target: def.Account}, nil

	case config.MatchCounterparty:
		if def.Pattern == "" {
			return nil, errors.New("pattern is required")
		}
		r, err := NewByCounterparty(def.Pattern, def.Account, def.Description)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern: %w", err)
		}
		return r, nil

	case config.MatchTitlePrefix:
		if def.Prefix == "" {
			return nil, errors.New("prefix is required")
		}
		return &ByTitlePrefix{Prefix: def.Prefix, Target: def.Account}, nil

	case config.MatchAccountCodeTitle:
		if def.Code == "" || def.Contains == "" {
			return nil, errors.New("code and contains are required")
		}
		return &ByAccountCodeAndTitle{Code: def.Code, Contains: def.Contains, Target: def.Account}, nil

	case config.MatchAny:
		return &CatchAll{Target: def.Account}, nil

	default:
		return nil, fmt.Errorf("unknown match kind %q", def.Match)
	}
}
