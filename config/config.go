package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/sirupsen/logrus"

	gqlgenconfig "github.com/99designs/gqlgen/codegen/config"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlgo/gqlsearch/render"
	"github.com/gqlgo/gqlsearch/search"
)

// DefaultFilenames are the config file names looked up by FindConfigFile.
var DefaultFilenames = []string{".gqlsearch.yml", "gqlsearch.yml", ".gqlsearch.yaml", "gqlsearch.yaml"}

var ErrConfigNotFound = errors.New("unable to find config file")

// Config represents the config file.
type Config struct {
	SchemaFilename gqlgenconfig.StringList `yaml:"schema,omitempty"`
	Endpoint       *EndPointConfig         `yaml:"endpoint,omitempty"`
	Search         SearchConfig            `yaml:"search,omitempty"`

	Sources []*ast.Source  `yaml:"-"`
	Schema  *ast.Schema    `yaml:"-"`
	Log     *logrus.Logger `yaml:"-"`
}

// SearchConfig holds the defaults of a search session.
type SearchConfig struct {
	Debounce string `yaml:"debounce,omitempty"`
	Within   string `yaml:"within,omitempty"`
	Output   string `yaml:"output,omitempty"`

	Wait   time.Duration `yaml:"-"`
	Format render.Format `yaml:"-"`
}

// EndPointConfig are the allowed options for the 'endpoint' config.
type EndPointConfig struct {
	Headers http.Header  `yaml:"headers,omitempty"`
	URL     string       `yaml:"url"`
	Client  *http.Client `yaml:"-"`
}

// FindConfigFile looks for one of filenames in dir and then in each parent directory.
func FindConfigFile(dir string, filenames []string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("unable to resolve %s: %w", dir, err)
	}

	for {
		for _, name := range filenames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, strings.Join(filenames, ", "))
		}
		dir = parent
	}
}

// LoadConfig loads and parses the config file. Relative schema paths are
// resolved against the directory of the config file.
func LoadConfig(configFilename string) (*Config, error) {
	configContent, err := os.ReadFile(configFilename)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}

	var c Config

	yamlDecoder := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(configContent)))), yaml.DisallowUnknownField())
	if err := yamlDecoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}

	// validation
	if len(c.SchemaFilename) > 0 && c.Endpoint != nil {
		return nil, errors.New("'schema' and 'endpoint' both specified. Use schema to load from a local file, use endpoint to load from a remote server (using introspection)")
	}

	if len(c.SchemaFilename) == 0 && c.Endpoint == nil {
		return nil, errors.New("neither 'schema' nor 'endpoint' specified. Use schema to load from a local file, use endpoint to load from a remote server (using introspection)")
	}

	if c.Endpoint != nil && c.Endpoint.URL == "" {
		return nil, errors.New("endpoint: 'url' is required")
	}

	if err := c.Search.check(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	if len(c.SchemaFilename) > 0 {
		schemaFilename, err := schemaFilenames(filepath.Dir(configFilename), c.SchemaFilename)
		if err != nil {
			return nil, err
		}

		c.SchemaFilename = schemaFilename

		sources, err := schemaFileSources(c.SchemaFilename)
		if err != nil {
			return nil, err
		}

		c.Sources = sources
	}

	return &c, nil
}

func (s *SearchConfig) check() error {
	s.Wait = search.DefaultWait
	if s.Debounce != "" {
		wait, err := time.ParseDuration(s.Debounce)
		if err != nil {
			return fmt.Errorf("debounce: %w", err)
		}
		if wait < 0 {
			return fmt.Errorf("debounce: must not be negative: %s", s.Debounce)
		}
		s.Wait = wait
	}

	format, err := render.ParseFormat(s.Output)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	s.Format = format

	return nil
}

// LoadSchema loads the schema from the local schema files, or from the endpoint
// by introspection.
func (c *Config) LoadSchema(ctx context.Context) error {
	if c.Log == nil {
		c.Log = logrus.New()
	}

	switch {
	case len(c.Sources) > 0:
		schema, err := gqlparser.LoadSchema(c.Sources...)
		if err != nil {
			return fmt.Errorf("load local schema failed: %w", err)
		}
		c.Schema = schema
	case c.Endpoint != nil:
		httpClient := c.Endpoint.Client
		if httpClient == nil {
			httpClient = http.DefaultClient
		}
		schema, err := introspectionSchema(ctx, httpClient, c.Endpoint.URL, c.Endpoint.Headers, c.Log)
		if err != nil {
			return fmt.Errorf("introspect schema failed: %w", err)
		}
		c.Schema = schema
	default:
		return errors.New("neither 'schema' nor 'endpoint' specified. Use schema to load from a local file, use endpoint to load from a remote server (using introspection)")
	}

	if c.Search.Within != "" && c.Schema.Types[c.Search.Within] == nil {
		return fmt.Errorf("search: within type %q is not defined in the schema", c.Search.Within)
	}

	c.Log.WithField("types", len(c.Schema.Types)).Debug("schema loaded")

	return nil
}

// globPattern turns the part of a schema path after ** into a regexp.
var globPattern = strings.NewReplacer(`.`, `\.`, `*`, `.+`, `\`, `[\\/]`, `/`, `[\\/]`)

func schemaFilenames(baseDir string, patterns gqlgenconfig.StringList) (gqlgenconfig.StringList, error) {
	var files gqlgenconfig.StringList

	for _, pattern := range patterns {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(baseDir, pattern)
		}

		var matches []string
		if strings.Contains(pattern, "**") {
			pathParts := strings.SplitN(pattern, "**", 2)
			rest := strings.TrimPrefix(strings.TrimPrefix(pathParts[1], `\`), `/`)
			globRe := regexp.MustCompile(globPattern.Replace(rest) + `$`)

			if err := filepath.WalkDir(pathParts[0], func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && globRe.MatchString(strings.TrimPrefix(path, pathParts[0])) {
					matches = append(matches, path)
				}
				return nil
			}); err != nil {
				return nil, fmt.Errorf("failed to walk schema at root %s: %w", pathParts[0], err)
			}
		} else {
			var err error
			matches, err = filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("failed to glob schema filename %s: %w", pattern, err)
			}
		}

		for _, m := range matches {
			if files.Has(m) {
				continue
			}
			files = append(files, m)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no schema files matched %s", strings.Join(patterns, ", "))
	}

	slices.Sort(files)

	return files, nil
}

func schemaFileSources(filenames gqlgenconfig.StringList) ([]*ast.Source, error) {
	sources := make([]*ast.Source, 0, len(filenames))
	for _, filename := range filenames {
		content, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("unable to open schema: %w", err)
		}

		sources = append(sources, &ast.Source{Name: filename, Input: string(content)})
	}

	return sources, nil
}
