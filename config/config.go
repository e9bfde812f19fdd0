// Package config defines the option surface consumed by the strata
// pipeline, with validation and file loading (YAML or JSON, chosen by
// extension).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by all validation failures so callers can test
// for the category with errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every recognized option. Zero values are not meaningful
// defaults; start from Default() and override.
type Config struct {
	// LineMergeYTolerance is the maximum vertical-center distance, in
	// points, between spans on the same logical line.
	LineMergeYTolerance float64 `yaml:"line_merge_y_tolerance" json:"line_merge_y_tolerance"`

	// ListIndentTolerance is the x-position clustering tolerance, in
	// points, for assigning nesting levels to list item markers.
	ListIndentTolerance float64 `yaml:"list_indent_tolerance" json:"list_indent_tolerance"`

	// CodeMinLines is the minimum run length for a code block; shorter
	// candidate runs are demoted to paragraphs.
	CodeMinLines int `yaml:"code_min_lines" json:"code_min_lines"`

	// CodeIndentThreshold is the leading-space count at or beyond which
	// a line is a code candidate.
	CodeIndentThreshold int `yaml:"code_indent_threshold" json:"code_indent_threshold"`

	// TableConfidenceMin is the minimum confidence for a candidate run
	// to be emitted as a table rather than a fenced code fallback.
	TableConfidenceMin float64 `yaml:"table_confidence_min" json:"table_confidence_min"`

	// FigureCaptionDistance is the maximum bbox-to-bbox distance, in
	// points, for a span to be a caption candidate.
	FigureCaptionDistance float64 `yaml:"figure_caption_distance" json:"figure_caption_distance"`

	// CaptionWeightDistance, CaptionWeightPosition and
	// CaptionWeightPattern are the caption scoring weights. They must
	// each lie in [0, 1] and sum to 1.0 within 1e-6.
	CaptionWeightDistance float64 `yaml:"caption_weight_distance" json:"caption_weight_distance"`
	CaptionWeightPosition float64 `yaml:"caption_weight_position" json:"caption_weight_position"`
	CaptionWeightPattern  float64 `yaml:"caption_weight_pattern" json:"caption_weight_pattern"`

	// SlugPrefixWidth is the zero-pad width of numeric slug prefixes.
	SlugPrefixWidth int `yaml:"slug_prefix_width" json:"slug_prefix_width"`

	// NumberingValidateGaps enables dotted section-path gap detection.
	NumberingValidateGaps bool `yaml:"numbering_validate_gaps" json:"numbering_validate_gaps"`

	// NumberingAllowChapterResets suppresses the reset warning when an
	// explicit chapter number does not exceed the running counter.
	NumberingAllowChapterResets bool `yaml:"numbering_allow_chapter_resets" json:"numbering_allow_chapter_resets"`

	// NumberingMaxDepth truncates dotted section paths deeper than this.
	NumberingMaxDepth int `yaml:"numbering_max_depth" json:"numbering_max_depth"`

	// AppendixRequiresPageBreak demotes an appendix heading that does
	// not start near the top of its page.
	AppendixRequiresPageBreak bool `yaml:"appendix_requires_page_break" json:"appendix_requires_page_break"`

	// AppendixPageTopBand is the distance, in points, from the page top
	// within which a heading counts as "at page top".
	AppendixPageTopBand float64 `yaml:"appendix_page_top_band" json:"appendix_page_top_band"`

	// ExcludePages lists 1-based page numbers the ingestor skips.
	ExcludePages []int `yaml:"exclude_pages" json:"exclude_pages"`

	// CharGapThreshold is the character-width multiple beyond which the
	// ingestor starts a new span.
	CharGapThreshold float64 `yaml:"char_gap_threshold" json:"char_gap_threshold"`

	// ImageFormat is the file extension used for figure filenames.
	ImageFormat string `yaml:"image_format" json:"image_format"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		LineMergeYTolerance:         3.0,
		ListIndentTolerance:         6.0,
		CodeMinLines:                2,
		CodeIndentThreshold:         4,
		TableConfidenceMin:          0.5,
		FigureCaptionDistance:       150,
		CaptionWeightDistance:       0.5,
		CaptionWeightPosition:       0.3,
		CaptionWeightPattern:        0.2,
		SlugPrefixWidth:             2,
		NumberingValidateGaps:       true,
		NumberingAllowChapterResets: false,
		NumberingMaxDepth:           4,
		AppendixRequiresPageBreak:   false,
		AppendixPageTopBand:         72,
		CharGapThreshold:            2.0,
		ImageFormat:                 "png",
	}
}

// Validate rejects configurations the pipeline cannot run with. It is
// called before pipeline execution; a failed validation never yields a
// partial run.
func (c Config) Validate() error {
	weights := map[string]float64{
		"caption_weight_distance": c.CaptionWeightDistance,
		"caption_weight_position": c.CaptionWeightPosition,
		"caption_weight_pattern":  c.CaptionWeightPattern,
	}
	for name, w := range weights {
		if w < 0 || w > 1 {
			return fmt.Errorf("%w: %s %v outside [0, 1]", ErrInvalid, name, w)
		}
	}
	sum := c.CaptionWeightDistance + c.CaptionWeightPosition + c.CaptionWeightPattern
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("%w: caption weights sum to %v, want 1.0", ErrInvalid, sum)
	}
	if c.LineMergeYTolerance < 0 {
		return fmt.Errorf("%w: line_merge_y_tolerance must be >= 0", ErrInvalid)
	}
	if c.CodeMinLines < 1 {
		return fmt.Errorf("%w: code_min_lines must be >= 1", ErrInvalid)
	}
	if c.TableConfidenceMin < 0 || c.TableConfidenceMin > 1 {
		return fmt.Errorf("%w: table_confidence_min must be in [0, 1]", ErrInvalid)
	}
	if c.FigureCaptionDistance <= 0 {
		return fmt.Errorf("%w: figure_caption_distance must be > 0", ErrInvalid)
	}
	if c.SlugPrefixWidth < 1 {
		return fmt.Errorf("%w: slug_prefix_width must be >= 1", ErrInvalid)
	}
	if c.NumberingMaxDepth < 1 {
		return fmt.Errorf("%w: numbering_max_depth must be >= 1", ErrInvalid)
	}
	return nil
}

// Load reads a configuration file, decodes it by extension (.yaml/.yml
// via YAML, anything else via JSON), applies it over the defaults and
// validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	} else {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse json config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
