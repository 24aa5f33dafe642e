package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"instinct/internal/app/brain"
	"instinct/internal/domain/decision"
)

// Config is the YAML tuning file: tier settings, scheduler budget, shared
// action sets and per-agent brain configs.
type Config struct {
	Tiers      tiersSpec      `yaml:"tiers"`
	Scheduler  schedulerSpec  `yaml:"scheduler"`
	ActionSets []actionSet    `yaml:"action_sets"`
	Brains     []brainSpec    `yaml:"brains"`
}

type tiersSpec struct {
	NearMaxDistance           float64 `yaml:"near_max_distance"`
	MidMaxDistance            float64 `yaml:"mid_max_distance"`
	FarMaxDistance            float64 `yaml:"far_max_distance"`
	NearIntervalSeconds       float64 `yaml:"near_interval_seconds"`
	MidIntervalSeconds        float64 `yaml:"mid_interval_seconds"`
	FarIntervalSeconds        float64 `yaml:"far_interval_seconds"`
	OutOfRangeIntervalSeconds float64 `yaml:"out_of_range_interval_seconds"`
	UpdateOnPerceptionChanges bool    `yaml:"update_on_perception_changes"`
}

type schedulerSpec struct {
	TickBudgetMs int `yaml:"tick_budget_ms"`
}

type actionSet struct {
	Name    string       `yaml:"name"`
	Actions []actionSpec `yaml:"actions"`
}

type brainSpec struct {
	AgentID                    string           `yaml:"agent_id"`
	ActionSets                 []string         `yaml:"action_sets"`
	Actions                    []actionSpec     `yaml:"actions"`
	PreventUpdateTags          []string         `yaml:"prevent_update_tags"`
	DefaultChoiceMethod        string           `yaml:"default_choice_method"`
	DefaultTopN                int              `yaml:"default_top_n"`
	ChoiceOverrides            []choiceOverride `yaml:"choice_overrides"`
	SameActionLocationTolSq    float64          `yaml:"same_action_location_tolerance_sq"`
}

type choiceOverride struct {
	Priority int    `yaml:"priority"`
	Method   string `yaml:"method"`
	TopN     int    `yaml:"top_n"`
}

type actionSpec struct {
	ActionTag                 string               `yaml:"action_tag"`
	Description               string               `yaml:"description"`
	Priority                  int                  `yaml:"priority"`
	Weight                    float64              `yaml:"weight"`
	Inertia                   float64              `yaml:"inertia"`
	RequiredTags              []string             `yaml:"required_tags"`
	BlockingTags              []string             `yaml:"blocking_tags"`
	Queries                   []querySpec          `yaml:"queries"`
	Considerations            []considerationSpec  `yaml:"considerations"`
	ActionParams              map[string]paramSpec `yaml:"action_params"`
	RepetitionPenalty         float64              `yaml:"repetition_penalty"`
	RepetitionPenaltyCooldown float64              `yaml:"repetition_penalty_cooldown"`
	ScoreCooldownTime         float64              `yaml:"score_cooldown_time"`
	// nil means true: actions are interruptible unless configured otherwise.
	AllowInterruptions *bool `yaml:"allow_interruptions"`
	HigherPriorityOnly bool  `yaml:"interruptions_from_higher_priority_only"`
}

type querySpec struct {
	QueryTag     string               `yaml:"query_tag"`
	Params       map[string]paramSpec `yaml:"params"`
	MaxFrequency float64              `yaml:"max_frequency"`
}

type considerationSpec struct {
	InputTag    string               `yaml:"input_tag"`
	Description string               `yaml:"description"`
	Params      map[string]paramSpec `yaml:"params"`
	BookendMin  paramSpec            `yaml:"bookend_min"`
	BookendMax  paramSpec            `yaml:"bookend_max"`
	Curve       decision.Curve       `yaml:"curve"`
}

// paramSpec accepts scalars for literals and single-key maps for references:
// 42, 4.2, {tag: action.wait}, {input: input.health}, {auto: param.stat.rage}.
type paramSpec struct {
	param decision.Param
	set   bool
}

func (p *paramSpec) UnmarshalYAML(node *yaml.Node) error {
	p.set = true
	switch node.Kind {
	case yaml.ScalarNode:
		var i int
		if err := node.Decode(&i); err == nil {
			p.param = decision.IntParam(i)
			return nil
		}
		var f float64
		if err := node.Decode(&f); err == nil {
			p.param = decision.FloatParam(f)
			return nil
		}
		var s string
		if err := node.Decode(&s); err == nil {
			p.param = decision.TagParam(decision.Tag(s))
			return nil
		}
		return fmt.Errorf("parameter scalar %q not understood", node.Value)
	case yaml.MappingNode:
		var m map[string]string
		if err := node.Decode(&m); err != nil {
			return err
		}
		if len(m) != 1 {
			return fmt.Errorf("parameter map must have exactly one key, got %d", len(m))
		}
		for k, v := range m {
			switch k {
			case "tag":
				p.param = decision.TagParam(decision.Tag(v))
			case "input":
				p.param = decision.InputRefParam(decision.Tag(v))
			case "auto":
				p.param = decision.AutoRefParam(decision.Tag(v))
			default:
				return fmt.Errorf("unknown parameter kind %q", k)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported parameter node kind %d", node.Kind)
	}
}

func Load(path string) (Config, error) {
	var c Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func Parse(raw []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// TierSettings converts the tiers block, falling back to engine defaults for
// omitted fields.
func (c Config) TierSettings() brain.TierSettings {
	t := brain.DefaultTierSettings()
	s := c.Tiers
	if s.NearMaxDistance > 0 {
		t.NearMaxDistance = s.NearMaxDistance
	}
	if s.MidMaxDistance > 0 {
		t.MidMaxDistance = s.MidMaxDistance
	}
	if s.FarMaxDistance > 0 {
		t.FarMaxDistance = s.FarMaxDistance
	}
	if s.NearIntervalSeconds > 0 {
		t.NearInterval = secs(s.NearIntervalSeconds)
	}
	if s.MidIntervalSeconds > 0 {
		t.MidInterval = secs(s.MidIntervalSeconds)
	}
	if s.FarIntervalSeconds > 0 {
		t.FarInterval = secs(s.FarIntervalSeconds)
	}
	if s.OutOfRangeIntervalSeconds > 0 {
		t.OutOfRangeInterval = secs(s.OutOfRangeIntervalSeconds)
	}
	t.UpdateOnPerceptionChanges = s.UpdateOnPerceptionChanges
	return t
}

func (c Config) TickBudget() time.Duration {
	return time.Duration(c.Scheduler.TickBudgetMs) * time.Millisecond
}

// Sets returns the named action-set bundles ready for registry registration.
func (c Config) Sets() map[string][]decision.ActionDef {
	out := make(map[string][]decision.ActionDef, len(c.ActionSets))
	for _, s := range c.ActionSets {
		out[s.Name] = actionDefs(s.Actions)
	}
	return out
}

// BrainConfigs returns agent_id -> BrainConfig for every configured brain.
func (c Config) BrainConfigs() map[string]decision.BrainConfig {
	out := make(map[string]decision.BrainConfig, len(c.Brains))
	for _, b := range c.Brains {
		cfg := decision.BrainConfig{
			ActionDefs:                    actionDefs(b.Actions),
			ActionSets:                    b.ActionSets,
			PreventUpdateTags:             tags(b.PreventUpdateTags),
			DefaultChoiceMethod:           choiceMethod(b.DefaultChoiceMethod),
			DefaultTopN:                   b.DefaultTopN,
			SameActionLocationToleranceSq: b.SameActionLocationTolSq,
		}
		for _, o := range b.ChoiceOverrides {
			cfg.ChoiceOverrides = append(cfg.ChoiceOverrides, decision.PriorityChoiceOverride{
				Priority: o.Priority,
				Method:   choiceMethod(o.Method),
				TopN:     o.TopN,
			})
		}
		out[b.AgentID] = cfg
	}
	return out
}

func actionDefs(specs []actionSpec) []decision.ActionDef {
	out := make([]decision.ActionDef, 0, len(specs))
	for _, s := range specs {
		def := decision.ActionDef{
			ActionTag:                 decision.Tag(s.ActionTag),
			Description:               s.Description,
			Priority:                  s.Priority,
			Weight:                    s.Weight,
			Inertia:                   s.Inertia,
			RequiredTags:              tags(s.RequiredTags),
			BlockingTags:              tags(s.BlockingTags),
			ActionParams:              params(s.ActionParams),
			RepetitionPenalty:         s.RepetitionPenalty,
			RepetitionPenaltyCooldown: s.RepetitionPenaltyCooldown,
			ScoreCooldownTime:         s.ScoreCooldownTime,
			AllowInterruptions:        s.AllowInterruptions == nil || *s.AllowInterruptions,
			InterruptionsFromHigherPriorityOnly: s.HigherPriorityOnly,
		}
		for _, q := range s.Queries {
			def.Queries = append(def.Queries, decision.QueryDef{
				QueryTag:     decision.Tag(q.QueryTag),
				Params:       params(q.Params),
				MaxFrequency: q.MaxFrequency,
			})
		}
		for _, con := range s.Considerations {
			bookendMin := con.BookendMin.param
			if !con.BookendMin.set {
				bookendMin = decision.FloatParam(0)
			}
			bookendMax := con.BookendMax.param
			if !con.BookendMax.set {
				bookendMax = decision.FloatParam(1)
			}
			def.Considerations = append(def.Considerations, decision.Consideration{
				InputTag:    decision.Tag(con.InputTag),
				Description: con.Description,
				Params:      params(con.Params),
				BookendMin:  bookendMin,
				BookendMax:  bookendMax,
				Curve:       con.Curve,
			})
		}
		out = append(out, def)
	}
	return out
}

func params(in map[string]paramSpec) decision.ParamMap {
	if len(in) == 0 {
		return nil
	}
	out := make(decision.ParamMap, len(in))
	for k, v := range in {
		out[k] = v.param
	}
	return out
}

func tags(in []string) []decision.Tag {
	if len(in) == 0 {
		return nil
	}
	out := make([]decision.Tag, 0, len(in))
	for _, s := range in {
		out = append(out, decision.Tag(s))
	}
	return out
}

func choiceMethod(s string) decision.ChoiceMethod {
	switch s {
	case "weighted_random_top_n":
		return decision.ChoiceWeightedRandomTopN
	case "weighted_random_top_n_percent":
		return decision.ChoiceWeightedRandomTopNPercent
	default:
		return decision.ChoiceHighestScoring
	}
}

func secs(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
