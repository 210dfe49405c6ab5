/*
Copyright 2018 Iguazio Systems Ltd.

Licensed under the Apache License, Version 2.0 (the "License") with
an addition restriction as set forth herein. You may not use this
file except in compliance with the License. You may obtain a copy of
the License at http://www.apache.org/licenses/LICENSE-2.0.

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
implied. See the License for the specific language governing
permissions and limitations under the License.

In addition, you may not use the software for any purposes that are
illegal under applicable law, and the grant of the foregoing license
under the Apache 2.0 license is conditioned upon your compliance with
such restriction.
*/

package tabular

import (
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ghodss/yaml"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// DefaultJSONColumn is the name of the column holding per-row JSON when the
// caller doesn't name one
const DefaultJSONColumn = "metadata"

// Binary column encodings inside JSON
const (
	Base64Encoding = "base64"
	HexEncoding    = "hex"
	NoEncoding     = "none"
)

// LogConfig is the logging configuration
type LogConfig struct {
	Level string `json:"level,omitempty" toml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// HTTPConfig is the transform service configuration
type HTTPConfig struct {
	Address string `json:"address,omitempty" toml:"address" validate:"required"`
	// Maximal request body in bytes
	MaxBodySize int `json:"maxBodySize,omitempty" toml:"maxBodySize" validate:"gt=0"`
}

// Config is the transform configuration
type Config struct {
	Log LogConfig `json:"log" toml:"log"`

	// Number of parallel worker routines, 1 disables parallel execution
	Workers int `json:"workers,omitempty" toml:"workers" validate:"gte=0"`
	// Maximal number of in flight tasks in the worker pool
	MaxTasks int `json:"maxTasks,omitempty" toml:"maxTasks" validate:"gtefield=Workers"`
	// Minimal number of rows before serialization goes parallel
	ParallelThreshold int `json:"parallelThreshold,omitempty" toml:"parallelThreshold" validate:"gte=0"`

	// Destination column for TransposeToJSON
	JSONColumn string `json:"jsonColumn,omitempty" toml:"jsonColumn"`
	// Encoding of bytes values in JSON (base64, hex or none)
	BinaryEncoding string `json:"binaryEncoding,omitempty" toml:"binaryEncoding" validate:"oneof=base64 hex none"`

	HTTP HTTPConfig `json:"http" toml:"http"`
}

// NewConfig returns a configuration with defaults
func NewConfig() *Config {
	cfg := &Config{}
	cfg.InitDefaults()
	return cfg
}

// LoadConfig reads configuration from path, TOML if the extension is .toml
// and YAML (or JSON) otherwise
func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't read config from %s", path)
	}

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}

	return NewConfigFromContents(data, format)
}

// NewConfigFromContents parses configuration in format (yaml or toml),
// populates defaults and validates it
func NewConfigFromContents(data []byte, format string) (*Config, error) {
	cfg := &Config{}

	switch strings.ToLower(format) {
	case "toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, errors.Wrap(err, "can't unmarshal TOML config")
		}
	case "yaml", "yml", "json", "":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "can't unmarshal YAML config")
		}
	default:
		return nil, errors.Errorf("unknown config format - %q", format)
	}

	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "bad configuration")
	}

	return cfg, nil
}

// InitDefaults initializes the defaults for configuration
func (c *Config) InitDefaults() {
	if c.Workers == 0 {
		c.Workers = 8
	}

	if c.MaxTasks == 0 {
		c.MaxTasks = 1024
	}

	if c.ParallelThreshold == 0 {
		c.ParallelThreshold = 1024
	}

	if c.JSONColumn == "" {
		c.JSONColumn = DefaultJSONColumn
	}

	if c.BinaryEncoding == "" {
		c.BinaryEncoding = Base64Encoding
	}

	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}

	if c.HTTP.MaxBodySize == 0 {
		c.HTTP.MaxBodySize = 64 * 1024 * 1024
	}
}

var configValidator = validator.New()

// Validate validates the configuration
func (c *Config) Validate() error {
	c.Log.Level = strings.ToLower(c.Log.Level)
	if err := configValidator.Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	return nil
}
