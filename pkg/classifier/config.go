package classifier

import (
	"fmt"

	"github.com/JaimeStill/tally/pkg/messages"
)

// DefaultMaxRetries bounds the retry loop when no limit is configured.
const DefaultMaxRetries = 6

// Config holds all classifier node parameters. Every flag is explicit
// constructor input; the node reads no ambient process state.
type Config struct {
	// ValidClasses is the ordered label set. Order matters for forward-scan
	// tie-breaking. When empty, PositiveClass/NegativeClass supply the legacy
	// two-class form, defaulting to Yes/No.
	ValidClasses  []string `json:"valid_classes,omitempty" toml:"valid_classes"`
	PositiveClass string   `json:"positive_class,omitempty" toml:"positive_class"`
	NegativeClass string   `json:"negative_class,omitempty" toml:"negative_class"`

	// ParseFromStart selects first-occurrence matching instead of the
	// default last-occurrence scan.
	ParseFromStart bool `json:"parse_from_start,omitempty" toml:"parse_from_start"`

	// Confidence enables token-logprob confidence extraction.
	Confidence bool `json:"confidence,omitempty" toml:"confidence"`

	// MaxRetries bounds total model invocations per run. When the budget
	// is exhausted without a valid classification the node reports the
	// unknown sentinel.
	MaxRetries int `json:"max_retries,omitempty" toml:"max_retries"`

	// BatchMode and Breakpoints together make the call step return a
	// suspension outcome instead of invoking the model.
	BatchMode   bool `json:"batch_mode,omitempty" toml:"batch_mode"`
	Breakpoints bool `json:"breakpoints,omitempty" toml:"breakpoints"`

	// SystemTemplate and HumanTemplate render the first conversation turn
	// with {field} substitution (e.g. {text}).
	SystemTemplate string `json:"system_template,omitempty" toml:"system_template"`
	HumanTemplate  string `json:"human_template,omitempty" toml:"human_template"`
}

// Finalize applies defaults and validation.
func (c *Config) Finalize() error {
	c.loadDefaults()
	return c.validate()
}

// Classes returns the effective ordered label set.
func (c *Config) Classes() []string {
	return c.ValidClasses
}

// Prompt returns the first-turn templates in system, human order.
func (c *Config) Prompt() messages.Prompt {
	var p messages.Prompt
	if c.SystemTemplate != "" {
		p = append(p, messages.NewTemplate(messages.RoleSystem, c.SystemTemplate))
	}
	if c.HumanTemplate != "" {
		p = append(p, messages.NewTemplate(messages.RoleHuman, c.HumanTemplate))
	}
	return p
}

func (c *Config) loadDefaults() {
	if len(c.ValidClasses) == 0 {
		if c.PositiveClass != "" || c.NegativeClass != "" {
			c.ValidClasses = []string{c.PositiveClass, c.NegativeClass}
		} else {
			c.ValidClasses = []string{"Yes", "No"}
		}
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.HumanTemplate == "" {
		c.HumanTemplate = "{text}"
	}
}

func (c *Config) validate() error {
	for _, class := range c.ValidClasses {
		if class == "" {
			return fmt.Errorf("valid_classes must not contain empty labels")
		}
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative: %d", c.MaxRetries)
	}
	return nil
}
