package cli

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig is the --config file. Flags given on the command line win over it.
type fileConfig struct {
	Port    uint16        `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
	Headers []string      `yaml:"headers"`
	Resolve []string      `yaml:"resolve"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}

	return cfg, nil
}
