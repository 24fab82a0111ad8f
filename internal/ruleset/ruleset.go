// Package ruleset loads and validates rule files.
package ruleset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/eliza/internal/model"
)

// ErrNoRules is returned for a rule document without rules.
var ErrNoRules = errors.New("no rules loaded")

// Format is a rule document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

//go:embed default.json
var defaultRules []byte

var validate = validator.New()

// fileRule is the on-disk shape of a rule. Pointer fields distinguish
// "omitted" from zero so defaults can apply.
type fileRule struct {
	ID            string      `json:"id" yaml:"id"`
	Description   string      `json:"description" yaml:"description"`
	Pattern       string      `json:"pattern" yaml:"pattern" validate:"required"`
	Priority      int         `json:"priority" yaml:"priority"`
	Topic         model.Topic `json:"topic" yaml:"topic" validate:"gte=0,lte=5"`
	Responses     []string    `json:"responses" yaml:"responses" validate:"required,min=1,dive,required"`
	ContextWeight *int        `json:"contextWeight" yaml:"contextWeight"`
	IsActive      *bool       `json:"isActive" yaml:"isActive"`
}

type fileRuleSet struct {
	Name  string     `json:"name" yaml:"name"`
	Rules []fileRule `json:"rules" yaml:"rules"`
}

// FormatFor picks a format from a file extension. Unknown extensions are
// read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadFile reads and validates a rule file.
func LoadFile(path string) (model.RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.RuleSet{}, fmt.Errorf("rule file not found: %s: %w", path, err)
		}
		return model.RuleSet{}, fmt.Errorf("open rule file: %w", err)
	}
	defer f.Close()

	rs, err := Decode(f, FormatFor(path))
	if err != nil {
		return model.RuleSet{}, fmt.Errorf("%s: %w", path, err)
	}
	if rs.Name == "" {
		rs.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return rs, nil
}

// Default returns the built-in German rule set.
func Default() model.RuleSet {
	rs, err := Decode(bytes.NewReader(defaultRules), FormatJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded rules: %v", err))
	}
	return rs
}

// Decode parses a rule document, applies defaults and validates every rule.
func Decode(r io.Reader, format Format) (model.RuleSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.RuleSet{}, fmt.Errorf("read rules: %w", err)
	}

	var doc fileRuleSet
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	default:
		return model.RuleSet{}, fmt.Errorf("unknown rule format %q", format)
	}
	if err != nil {
		return model.RuleSet{}, fmt.Errorf("parse rules: %w", err)
	}

	if len(doc.Rules) == 0 {
		return model.RuleSet{}, ErrNoRules
	}

	rs := model.RuleSet{Name: doc.Name, Rules: make([]model.Rule, 0, len(doc.Rules))}
	for i, fr := range doc.Rules {
		if err := validate.Struct(fr); err != nil {
			return model.RuleSet{}, fmt.Errorf("rule %d (%s): %w", i+1, label(fr, i), err)
		}
		rs.Rules = append(rs.Rules, fr.toModel())
	}
	return rs, nil
}

func label(fr fileRule, i int) string {
	if fr.ID != "" {
		return fr.ID
	}
	return fmt.Sprintf("#%d", i+1)
}

func (fr fileRule) toModel() model.Rule {
	r := model.Rule{
		ID:            fr.ID,
		Description:   fr.Description,
		Pattern:       fr.Pattern,
		Priority:      fr.Priority,
		Topic:         fr.Topic,
		Responses:     fr.Responses,
		ContextWeight: 1,
		Active:        true,
	}
	if fr.ContextWeight != nil {
		r.ContextWeight = *fr.ContextWeight
	}
	if fr.IsActive != nil {
		r.Active = *fr.IsActive
	}
	return r
}

// Encode writes rules as a document that Decode reads back.
func Encode(w io.Writer, rs model.RuleSet, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rs); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(rs)
	default:
		return fmt.Errorf("unknown rule format %q", format)
	}
}
