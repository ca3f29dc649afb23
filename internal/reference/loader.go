package reference

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wonny/happiness/internal/contracts"
)

//go:embed default.yaml
var defaultYAML []byte

// Dataset is a loaded, validated reference dataset
type Dataset struct {
	Data   *contracts.ReferenceData
	Raw    []byte
	Hash   string // sha256 of the canonical document
	Source string // file path or "embedded"
}

// alertDoc accepts either an absolute timestamp or an age relative to load time
type alertDoc struct {
	contracts.AnomalyAlert `yaml:",inline"`
	Age                    string `yaml:"age,omitempty" json:"age,omitempty"`
}

type postDoc struct {
	contracts.SocialPost `yaml:",inline"`
	Age                  string `yaml:"age,omitempty" json:"age,omitempty"`
}

// document is the on-disk shape
type document struct {
	Brand            string                        `yaml:"brand" json:"brand"`
	Categories       []contracts.CategoryInsight   `yaml:"categories" json:"categories"`
	Competitors      []contracts.CompetitorProfile `yaml:"competitors" json:"competitors"`
	Insights         []contracts.WeightedInsight   `yaml:"insights" json:"insights"`
	PositiveInsights []contracts.WeightedInsight   `yaml:"positive_insights" json:"positive_insights"`
	Alerts           []alertDoc                    `yaml:"alerts" json:"alerts"`
	SocialPosts      []postDoc                     `yaml:"social_posts" json:"social_posts"`
}

// Default returns the embedded dataset, ages resolved against now
func Default(now time.Time) (*Dataset, error) {
	return Parse(defaultYAML, "embedded", now)
}

// Load reads a YAML dataset from path. An empty path selects the embedded default.
func Load(path string, now time.Time) (*Dataset, error) {
	if path == "" {
		return Default(now)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference file: %w", err)
	}

	return Parse(data, path, now)
}

// Parse decodes and validates a YAML dataset
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Parse(data []byte, source string, now time.Time) (*Dataset, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}

	ref, err := doc.resolve(now)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", source, err)
	}

	if err := Validate(ref); err != nil {
		return nil, fmt.Errorf("validate %s: %w", source, err)
	}

	hash, err := hashDocument(&doc)
	if err != nil {
		return nil, err
	}

	return &Dataset{Data: ref, Raw: data, Hash: hash, Source: source}, nil
}

// resolve turns ages into absolute timestamps
func (d *document) resolve(now time.Time) (*contracts.ReferenceData, error) {
	ref := &contracts.ReferenceData{
		Brand:            d.Brand,
		Categories:       d.Categories,
		Competitors:      d.Competitors,
		Insights:         d.Insights,
		PositiveInsights: d.PositiveInsights,
		Alerts:           make([]contracts.AnomalyAlert, 0, len(d.Alerts)),
		SocialPosts:      make([]contracts.SocialPost, 0, len(d.SocialPosts)),
	}

	for i, a := range d.Alerts {
		ts, err := stamp(a.Timestamp, a.Age, now)
		if err != nil {
			return nil, fmt.Errorf("alerts[%d]: %w", i, err)
		}
		alert := a.AnomalyAlert
		alert.Timestamp = ts
		ref.Alerts = append(ref.Alerts, alert)
	}

	for i, p := range d.SocialPosts {
		ts, err := stamp(p.Timestamp, p.Age, now)
		if err != nil {
			return nil, fmt.Errorf("social_posts[%d]: %w", i, err)
		}
		post := p.SocialPost
		post.Timestamp = ts
		ref.SocialPosts = append(ref.SocialPosts, post)
	}

	return ref, nil
}

func stamp(ts time.Time, age string, now time.Time) (time.Time, error) {
	switch {
	case age != "" && !ts.IsZero():
		return time.Time{}, fmt.Errorf("timestamp and age are mutually exclusive")
	case age != "":
		d, err := time.ParseDuration(age)
		if err != nil {
			return time.Time{}, fmt.Errorf("age %q: %w", age, err)
		}
		if d < 0 {
			return time.Time{}, fmt.Errorf("age %q must not be negative", age)
		}
		return now.Add(-d), nil
	case !ts.IsZero():
		return ts, nil
	default:
		return time.Time{}, fmt.Errorf("timestamp or age required")
	}
}

// hashDocument hashes the canonical JSON of the document, before ages are resolved
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func hashDocument(doc *document) (string, error) {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("hash reference: %w", err)
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
