package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jeff-blank/svg2vd/pkg/naming"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

type DrawableParams struct {
	Width  string `yaml:"width"`
	Height string `yaml:"height"`
}

type Config struct {
	General  map[string]string
	Naming   naming.Rules      `yaml:"naming"`
	Drawable DrawableParams    `yaml:"drawable"`
	DbParam  map[string]string `yaml:"database"`
}

var generalDefaults = map[string]string{
	"input_dir":  "images",
	"output_dir": "app/src/main/res/drawable",
	"glob":       "*.svg",
	"workers":    "4",
}

func Default() *Config {
	config := &Config{
		General:  make(map[string]string),
		Naming:   naming.DefaultRules(),
		Drawable: DrawableParams{Width: "24dp", Height: "24dp"},
		DbParam:  make(map[string]string),
	}
	for k, v := range generalDefaults {
		config.General[k] = v
	}
	return config
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; the defaults are returned.
func Load(configFile string) (*Config, error) {
	config := Default()

	yamlcfg, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("config file '%s' not found, using defaults", configFile)
			return config, nil
		}
		return nil, fmt.Errorf("read config file '%s': %w", configFile, err)
	}

	if err := yaml.Unmarshal(yamlcfg, config); err != nil {
		return nil, fmt.Errorf("parse config file '%s': %w", configFile, err)
	}
	config.fill()
	return config, nil
}

func New(configFile string) *Config {
	config, err := Load(configFile)
	if err != nil {
		log.Fatal(err)
	}
	return config
}

// fill restores defaults for keys a partial file left empty.
func (c *Config) fill() {
	if c.General == nil {
		c.General = make(map[string]string)
	}
	for k, v := range generalDefaults {
		if len(c.General[k]) == 0 {
			c.General[k] = v
		}
	}

	def := naming.DefaultRules()
	if c.Naming.Substitutions == nil {
		c.Naming.Substitutions = def.Substitutions
	}
	if len(c.Naming.Prefix) == 0 {
		c.Naming.Prefix = def.Prefix
	}
	if len(c.Naming.Extension) == 0 {
		c.Naming.Extension = def.Extension
	}

	if len(c.Drawable.Width) == 0 {
		c.Drawable.Width = "24dp"
	}
	if len(c.Drawable.Height) == 0 {
		c.Drawable.Height = "24dp"
	}
	if c.DbParam == nil {
		c.DbParam = make(map[string]string)
	}
}

// Workers is general.workers as a positive int.
func (c *Config) Workers() int {
	n, err := strconv.Atoi(c.General["workers"])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
