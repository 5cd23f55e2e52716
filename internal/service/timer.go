package service

import (
	"strconv"

	"vir/coach-app/internal/domain"
)

// Interval-timer defaults. CountIn differs by call site: the player counts
// in from 3, a freshly saved preset from 5.
const (
	DefaultTimerWork            = 40
	DefaultTimerRest            = 20
	DefaultTimerSets            = 1
	DefaultTimerRestBetweenSets = 60
	DefaultTimerFinisherRest    = 60
	PlayerCountIn               = 3
	PresetCountIn               = 5
)

// Clamp bounds for resolved timer fields.
const (
	minWork         = 5
	maxWork         = 300
	maxRest         = 300
	maxRounds       = 50
	maxBetweenSets  = 600
	maxFinisherRest = 600
	maxCountIn      = 10
)

// TimerConfig is a fully resolved interval-timer configuration, every field
// populated and clamped.
type TimerConfig struct {
	Work            int `json:"work"`
	Rest            int `json:"rest"`
	Rounds          int `json:"rounds"`
	Sets            int `json:"sets"`
	RestBetweenSets int `json:"restBetweenSets"`
	FinisherRest    int `json:"finisherRest"`
	CountIn         int `json:"countIn"`
}

// TimerOverrides carries per-request override values, typically raw query
// parameters. Absent keys leave the underlying layer untouched; malformed
// values are ignored (the field keeps its default/preset value).
type TimerOverrides map[string]string

func (o TimerOverrides) apply(key string, dst *int) {
	raw, ok := o[key]
	if !ok || raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return
	}
	*dst = v
}

// ResolveTimerConfig merges three layers into a player-ready configuration:
// hard defaults, the routine's stored preset, then per-request overrides.
// Each layer only overrides fields it actually supplies. After the merge,
// rounds is capped at itemCount (when the routine has items) and all
// durations are clamped to sane bounds.
func ResolveTimerConfig(preset *domain.TimerPreset, overrides TimerOverrides, itemCount int, countInDefault int) TimerConfig {
	cfg := TimerConfig{
		Work:            DefaultTimerWork,
		Rest:            DefaultTimerRest,
		Rounds:          itemCount,
		Sets:            DefaultTimerSets,
		RestBetweenSets: DefaultTimerRestBetweenSets,
		FinisherRest:    DefaultTimerFinisherRest,
		CountIn:         countInDefault,
	}
	if cfg.Rounds < 1 {
		cfg.Rounds = 1
	}

	if preset != nil {
		if preset.Work > 0 {
			cfg.Work = preset.Work
		}
		if preset.Rest > 0 {
			cfg.Rest = preset.Rest
		}
		if preset.Rounds > 0 {
			cfg.Rounds = preset.Rounds
		}
		if preset.Sets > 0 {
			cfg.Sets = preset.Sets
		}
		if preset.RestBetweenSets > 0 {
			cfg.RestBetweenSets = preset.RestBetweenSets
		}
		if preset.FinisherRest > 0 {
			cfg.FinisherRest = preset.FinisherRest
		}
		if preset.CountIn > 0 {
			cfg.CountIn = preset.CountIn
		}
	}

	overrides.apply("work", &cfg.Work)
	overrides.apply("rest", &cfg.Rest)
	overrides.apply("rounds", &cfg.Rounds)
	overrides.apply("sets", &cfg.Sets)
	overrides.apply("rest_between_sets", &cfg.RestBetweenSets)
	overrides.apply("finisher_rest", &cfg.FinisherRest)
	overrides.apply("count_in", &cfg.CountIn)

	cfg.Work = clamp(cfg.Work, minWork, maxWork)
	cfg.Rest = clamp(cfg.Rest, 0, maxRest)
	cfg.Rounds = clamp(cfg.Rounds, 1, maxRounds)
	if itemCount > 0 && cfg.Rounds > itemCount {
		cfg.Rounds = itemCount
	}
	if cfg.Sets < 1 {
		cfg.Sets = 1
	}
	cfg.RestBetweenSets = clamp(cfg.RestBetweenSets, 0, maxBetweenSets)
	cfg.FinisherRest = clamp(cfg.FinisherRest, 0, maxFinisherRest)
	cfg.CountIn = clamp(cfg.CountIn, 0, maxCountIn)

	return cfg
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
