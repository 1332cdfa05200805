// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package confero

import (
	"errors"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/poiesic/confero/ai"
	"github.com/poiesic/confero/core"
)

// Config is the application configuration for the service and the batch
// job. Flat keys so env overrides stay simple.
type Config struct {
	Addr        string   `koanf:"addr"`
	DataPath    string   `koanf:"data_path"`
	CORSOrigins []string `koanf:"cors_origins"`

	EmbeddingHost   string `koanf:"embedding_host"`
	GenerativeHost  string `koanf:"generative_host"`
	EmbeddingModel  string `koanf:"embedding_model"`
	GenerativeModel string `koanf:"generative_model"`
	EmbeddingDim    int    `koanf:"embedding_dim"`

	MinSimilarity float64       `koanf:"min_similarity"`
	QueryTimeout  time.Duration `koanf:"query_timeout"`
}

// DefaultAppConfig returns a Config with local-development defaults.
func DefaultAppConfig() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Addr:            ":8080",
		DataPath:        "confero.db",
		EmbeddingHost:   aiDefaults.EmbeddingHost,
		GenerativeHost:  aiDefaults.GenerativeHost,
		EmbeddingModel:  aiDefaults.EmbeddingModel,
		GenerativeModel: aiDefaults.GenerativeModel,
		EmbeddingDim:    core.EmbeddingDim,
		MinSimilarity:   -1,
		QueryTimeout:    2 * time.Minute,
	}
}

// LoadConfig layers defaults, an optional YAML file, and environment
// variables. Order of precedence (low to high):
//
//  1. defaults
//  2. YAML file at path, if path is non-empty
//  3. env vars with prefix CONFERO_ (CONFERO_ADDR, CONFERO_DATA_PATH, ...)
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// CONFERO_EMBEDDING_MODEL -> embedding_model; underscores are kept to
	// match the koanf tags on the struct.
	envProvider := env.Provider("CONFERO_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "confero_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *DefaultAppConfig()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.DataPath == "" {
		return nil, errors.New("data_path must not be empty")
	}
	return &cfg, nil
}

// AIConfig converts the app config to the ai package's configuration.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.EmbeddingHost),
		ai.WithGenerativeHost(c.GenerativeHost),
		ai.WithEmbeddingModel(c.EmbeddingModel),
		ai.WithGenerativeModel(c.GenerativeModel),
		ai.WithEmbeddingDim(c.EmbeddingDim),
	)
}
