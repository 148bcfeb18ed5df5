// Package config holds the sampler settings shared by the command line
// and the models.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	// corpus file, one document per line
	Data string `yaml:"data"`
	// output path prefix for .phi/.theta/.smp/.dti, defaults to Data
	Out    string `yaml:"out"`
	Topics int    `yaml:"topics"`
	// document-topic concentration, re-estimated after burn in
	Alpha float64 `yaml:"alpha"`
	// topic-word concentration
	Beta     float64 `yaml:"beta"`
	MaxSteps int     `yaml:"max_steps"`
	// hyperparameter updates per step after burn in
	NumLoops      int     `yaml:"num_loops"`
	BurnIn        int     `yaml:"burn_in"`
	Converge      bool    `yaml:"converge"`
	ConvergeLimit float64 `yaml:"converge_limit"`
	Seed          int64   `yaml:"seed"`
	Verbose       bool    `yaml:"verbose"`
	// constraint forest (.dnf); empty selects plain LDA
	Forest string `yaml:"dnf"`
	// strength of the constraint links
	Eta      float64 `yaml:"eta"`
	Progress bool    `yaml:"progress"`
	// sampler of the unconstrained model, "lda" or "sparselda"
	Sampler string `yaml:"sampler"`
}

func Default() *Config {
	return &Config{
		Topics:        10,
		Alpha:         1.0,
		Beta:          0.01,
		MaxSteps:      10,
		NumLoops:      10,
		BurnIn:        5,
		ConvergeLimit: 0.001,
		Seed:          time.Now().Unix(),
		Eta:           10,
	}
}

// Read decodes YAML from r over the defaults, unknown keys are rejected
func Read(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

func Load(fn string) (*Config, error) {
	raw, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	cfg, err := Read(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", fn, err)
	}
	return cfg, nil
}

// Model names the registered sampler the configuration selects
func (c *Config) Model() string {
	if c.Forest != "" {
		return "ldadf"
	}
	if c.Sampler != "" {
		return c.Sampler
	}
	return "lda"
}

// Validate checks the numeric settings and fills the output prefix
func (c *Config) Validate() error {
	switch {
	case c.Data == "":
		return fmt.Errorf("%w: no corpus file", ErrInvalid)
	case c.Topics <= 0:
		return fmt.Errorf("%w: topics = %d", ErrInvalid, c.Topics)
	case c.Alpha <= 0:
		return fmt.Errorf("%w: alpha = %g", ErrInvalid, c.Alpha)
	case c.Beta <= 0:
		return fmt.Errorf("%w: beta = %g", ErrInvalid, c.Beta)
	case c.MaxSteps <= 0:
		return fmt.Errorf("%w: max steps = %d", ErrInvalid, c.MaxSteps)
	case c.NumLoops < 0:
		return fmt.Errorf("%w: num loops = %d", ErrInvalid, c.NumLoops)
	case c.BurnIn < 0:
		return fmt.Errorf("%w: burn in = %d", ErrInvalid, c.BurnIn)
	case c.ConvergeLimit <= 0:
		return fmt.Errorf("%w: converge limit = %g", ErrInvalid, c.ConvergeLimit)
	case c.Forest != "" && c.Eta < 1:
		return fmt.Errorf("%w: eta = %g, want >= 1", ErrInvalid, c.Eta)
	case c.Sampler != "" && c.Sampler != "lda" && c.Sampler != "sparselda":
		return fmt.Errorf("%w: sampler %q", ErrInvalid, c.Sampler)
	case c.Forest != "" && c.Sampler == "sparselda":
		return fmt.Errorf("%w: sparselda takes no constraint forest", ErrInvalid)
	}
	if c.Out == "" {
		c.Out = c.Data
	}
	return nil
}
