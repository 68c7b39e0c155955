// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// engine options, loaded from yaml files, maps and FACET_* environment variables
package fconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/wavetermdev/facetengine/pkg/utilds"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "FACET_"

const (
	DefaultMaxRerenderIterations = 1000
	DefaultUidAttr               = "data-rendering-service-uid"
	DefaultRenderedByAttr        = "data-rendered-by"
	DefaultStyleClassAttr        = "data-facet-class"
	DefaultPlaceholderAttr       = "data-placeholder"
)

type Options struct {
	MaxRerenderIterations int    `json:"maxrerenderiterations" yaml:"maxrerenderiterations" validate:"min=1,max=1000000"`
	UidAttr               string `json:"uidattr" yaml:"uidattr" validate:"required,startswith=data-"`
	RenderedByAttr        string `json:"renderedbyattr" yaml:"renderedbyattr" validate:"required,startswith=data-,nefield=UidAttr"`
	StyleClassAttr        string `json:"styleclassattr" yaml:"styleclassattr" validate:"required,startswith=data-"`
	PlaceholderAttr       string `json:"placeholderattr" yaml:"placeholderattr" validate:"required"`
	LogReconcile          bool   `json:"logreconcile,omitempty" yaml:"logreconcile,omitempty"`
}

var validate = validator.New()

// json names of the fields settable from the environment
var envFields = map[string]bool{
	"maxrerenderiterations": true,
	"uidattr":               true,
	"renderedbyattr":        true,
	"styleclassattr":        true,
	"placeholderattr":       true,
	"logreconcile":          true,
}

func DefaultOptions() *Options {
	return &Options{
		MaxRerenderIterations: DefaultMaxRerenderIterations,
		UidAttr:               DefaultUidAttr,
		RenderedByAttr:        DefaultRenderedByAttr,
		StyleClassAttr:        DefaultStyleClassAttr,
		PlaceholderAttr:       DefaultPlaceholderAttr,
	}
}

func (o *Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return utilds.MakeCodedError(utilds.ErrCode_Config, fmt.Errorf("invalid engine options: %w", err))
	}
	return nil
}

func (o *Options) Copy() *Options {
	rtn := *o
	return &rtn
}

// ApplyMap overlays the keys present in m (json field names) onto o
func (o *Options) ApplyMap(m map[string]any) error {
	dconfig := &mapstructure.DecoderConfig{
		Result:           o,
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	}
	decoder, err := mapstructure.NewDecoder(dconfig)
	if err != nil {
		return err
	}
	if err := decoder.Decode(m); err != nil {
		return utilds.MakeCodedError(utilds.ErrCode_Config, fmt.Errorf("decoding engine options: %w", err))
	}
	return nil
}

// FromMap returns the defaults overlaid with m, validated
func FromMap(m map[string]any) (*Options, error) {
	opts := DefaultOptions()
	if err := opts.ApplyMap(m); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// LoadFile reads a yaml options file on top of the defaults
func LoadFile(fileName string) (*Options, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, utilds.MakeCodedError(utilds.ErrCode_Config, fmt.Errorf("parsing config file %s: %w", fileName, err))
	}
	return FromMap(m)
}

// LoadEnvFile loads a .env file into the process environment (existing vars win)
func LoadEnvFile(fileName string) error {
	if err := godotenv.Load(fileName); err != nil {
		return fmt.Errorf("loading env file %s: %w", fileName, err)
	}
	return nil
}

// ApplyEnv overlays FACET_<FIELD> environment variables (e.g. FACET_MAXRERENDERITERATIONS)
func (o *Options) ApplyEnv() error {
	m := make(map[string]any)
	for _, kv := range os.Environ() {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		field := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if !envFields[field] {
			continue
		}
		m[field] = val
	}
	if len(m) == 0 {
		return nil
	}
	return o.ApplyMap(m)
}

// Load resolves options in order: defaults, yaml file, env file, environment.
// empty file names are skipped.
func Load(configFile string, envFile string) (*Options, error) {
	opts := DefaultOptions()
	if configFile != "" {
		fileOpts, err := LoadFile(configFile)
		if err != nil {
			return nil, err
		}
		opts = fileOpts
	}
	if envFile != "" {
		if err := LoadEnvFile(envFile); err != nil {
			return nil, err
		}
	}
	if err := opts.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}
