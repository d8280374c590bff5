package source

import (
	"fmt"
	"os"

	"github.com/hazyhaar/prenoms-registry/pkg/names"
	"gopkg.in/yaml.v3"
)

// Manifest describes a dataset directory: where the registry file is and how
// to read it.
type Manifest struct {
	ID           string     `yaml:"id" json:"id"`
	Version      string     `yaml:"version" json:"version"`
	Jurisdiction string     `yaml:"jurisdiction" json:"jurisdiction"`
	Source       string     `yaml:"source" json:"source"`
	SourceURL    string     `yaml:"source_url" json:"source_url,omitempty"`
	License      string     `yaml:"license" json:"license"`
	DataFile     string     `yaml:"data_file" json:"data_file"`
	Format       FormatSpec `yaml:"format" json:"-"`
}

// FormatSpec describes the delimited layout and the registry's reserved
// tokens. HasHeader and RareBucket are pointers so an omitted key gets the
// national default while an explicit false or "" is kept: `rare_bucket: ""`
// disables the rare bucket.
type FormatSpec struct {
	Delimiter    string     `yaml:"delimiter"`
	Encoding     string     `yaml:"encoding"`
	HasHeader    *bool      `yaml:"has_header,omitempty"`
	Columns      ColumnSpec `yaml:"columns"`
	SentinelYear string     `yaml:"sentinel_year"`
	RareBucket   *string    `yaml:"rare_bucket,omitempty"`
}

// ColumnSpec names the header columns holding each field. Without a header
// the fields are read positionally in sex, name, year, count order.
type ColumnSpec struct {
	Sex   string `yaml:"sex"`
	Name  string `yaml:"name"`
	Year  string `yaml:"year"`
	Count string `yaml:"count"`
}

// NationalFormat is the layout of the INSEE national first-name file.
func NationalFormat() FormatSpec {
	return FormatSpec{
		Delimiter:    ";",
		Encoding:     "utf-8",
		HasHeader:    ptr(true),
		Columns:      ColumnSpec{Sex: "sexe", Name: "preusuel", Year: "annais", Count: "nombre"},
		SentinelYear: names.DefaultSentinelYear,
		RareBucket:   ptr(names.DefaultRareBucket),
	}
}

func ptr[T any](v T) *T { return &v }

// Header reports whether the first row is a header. Unset means true.
func (f FormatSpec) Header() bool {
	return f.HasHeader == nil || *f.HasHeader
}

// WithHeader returns a copy of f with the header flag set.
func (f FormatSpec) WithHeader(has bool) FormatSpec {
	f.HasHeader = ptr(has)
	return f
}

// WithRareBucket returns a copy of f using token as the rare bucket. An
// empty token disables it.
func (f FormatSpec) WithRareBucket(token string) FormatSpec {
	f.RareBucket = ptr(token)
	return f
}

// NormalizeOptions returns the engine options matching this format.
func (f FormatSpec) NormalizeOptions() names.NormalizeOptions {
	opts := names.NormalizeOptions{SentinelYear: f.SentinelYear}
	switch {
	case f.RareBucket == nil:
		opts.RareBucket = names.DefaultRareBucket
	case *f.RareBucket == "":
		opts.NoRareBucket = true
	default:
		opts.RareBucket = *f.RareBucket
	}
	return opts
}

func (f *FormatSpec) applyDefaults() {
	def := NationalFormat()
	if f.Delimiter == "" {
		f.Delimiter = def.Delimiter
	}
	if f.HasHeader == nil {
		f.HasHeader = def.HasHeader
	}
	if f.RareBucket == nil {
		f.RareBucket = def.RareBucket
	}
	if f.Columns.Sex == "" {
		f.Columns.Sex = def.Columns.Sex
	}
	if f.Columns.Name == "" {
		f.Columns.Name = def.Columns.Name
	}
	if f.Columns.Year == "" {
		f.Columns.Year = def.Columns.Year
	}
	if f.Columns.Count == "" {
		f.Columns.Count = def.Columns.Count
	}
}

// LoadManifest reads and parses a manifest.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("manifest %s: missing id", path)
	}
	if m.DataFile == "" {
		m.DataFile = "data.csv"
	}
	m.Format.applyDefaults()
	return &m, nil
}

// WriteManifest writes m as YAML to path.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
