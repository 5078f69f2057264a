// Package config loads the settings shared by the forcescale commands.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr       = "127.0.0.1:8080"
	DefaultWebRoot    = "./web"
	DefaultBaud       = 115200
	DefaultLabelDelay = time.Second
	DefaultLogLevel   = "info"
)

// Serial describes the optional hardware force source.
type Serial struct {
	Port string `json:"port,omitempty" yaml:"port,omitempty"`
	Baud int    `json:"baud,omitempty" yaml:"baud,omitempty"`
}

// Config holds every setting of the scale front ends. Zero values are
// replaced by defaults in ApplyDefaults.
type Config struct {
	Addr     string  `json:"addr,omitempty" yaml:"addr,omitempty"`
	WebRoot  string  `json:"webRoot,omitempty" yaml:"webRoot,omitempty"`
	Serial   *Serial `json:"serial,omitempty" yaml:"serial,omitempty"`
	LogLevel string  `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	// LabelDelay is how long the tare button keeps its TARED/RESET label.
	LabelDelay Duration `json:"labelDelay,omitempty" yaml:"labelDelay,omitempty"`
}

// Default returns a Config with every default filled in.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// Load reads path as YAML when it ends in .yaml or .yml and as JSON otherwise.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "read config %s", path)
	}
	var c Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &c)
	default:
		err = json.Unmarshal(b, &c)
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "parse config %s", path)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid config %s", path)
	}
	return &c, nil
}

// Save writes c to path, as YAML for .yaml/.yml and indented JSON otherwise.
func Save(path string, c *Config) error {
	if c == nil {
		return pkgerrors.New("config is nil")
	}
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return pkgerrors.Wrap(err, "encode config")
	}
	return pkgerrors.Wrapf(os.WriteFile(path, data, 0644), "write config %s", path)
}

func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = DefaultAddr
	}
	if strings.TrimSpace(c.WebRoot) == "" {
		c.WebRoot = DefaultWebRoot
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LabelDelay == 0 {
		c.LabelDelay = Duration(DefaultLabelDelay)
	}
	if c.Serial != nil && c.Serial.Baud == 0 {
		c.Serial.Baud = DefaultBaud
	}
}

func (c *Config) Validate() error {
	if c.LabelDelay < 0 {
		return pkgerrors.Errorf("labelDelay must not be negative, got %s", c.LabelDelay)
	}
	if c.Serial != nil && c.Serial.Baud < 0 {
		return pkgerrors.Errorf("serial baud must be positive, got %d", c.Serial.Baud)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return pkgerrors.Wrap(err, "logLevel")
	}
	return nil
}

// SerialPort returns the configured port, empty when no serial source is set.
func (c *Config) SerialPort() string {
	if c.Serial == nil {
		return ""
	}
	return strings.TrimSpace(c.Serial.Port)
}

func (c *Config) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"addr":       c.Addr,
		"webRoot":    c.WebRoot,
		"serial":     c.SerialPort(),
		"labelDelay": c.LabelDelay.String(),
	}
}
