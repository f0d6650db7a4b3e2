package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// DefaultFile is the catalog file looked up in the working directory.
const DefaultFile = "internships.json"

//go:embed default_internships.json
var defaultInternships []byte

// Posting is a single internship opportunity.
type Posting struct {
	ID               int      `json:"id" mapstructure:"id"`
	Title            string   `json:"title" mapstructure:"title"`
	Company          string   `json:"company" mapstructure:"company"`
	Location         string   `json:"location" mapstructure:"location"`
	Stipend          string   `json:"stipend" mapstructure:"stipend"`
	Skills           []string `json:"skills" mapstructure:"skills"`
	Responsibilities []string `json:"roles_responsibilities" mapstructure:"roles_responsibilities"`
}

// StipendThousands returns the numeric part of the stipend ("15K" -> 15).
// The second value is false when the stipend carries no digits.
func (p Posting) StipendThousands() (int, bool) {
	var digits strings.Builder
	for _, r := range p.Stipend {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}

	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

func (p Posting) clone() Posting {
	p.Skills = append([]string(nil), p.Skills...)
	p.Responsibilities = append([]string(nil), p.Responsibilities...)
	return p
}

// Catalog is a read-only list of postings. It is safe for concurrent use.
type Catalog struct {
	postings []Posting
}

// New builds a catalog from a copy of the provided postings.
func New(postings []Posting) *Catalog {
	items := make([]Posting, 0, len(postings))
	for _, p := range postings {
		items = append(items, p.clone())
	}
	return &Catalog{postings: items}
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	postings, err := decode(defaultInternships)
	if err != nil {
		return nil, fmt.Errorf("decode default catalog: %w", err)
	}
	return &Catalog{postings: postings}, nil
}

// Load reads postings from path. A missing or unreadable file falls back to the
// built-in catalog, so the returned error is only about the built-in data.
func Load(path string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug("catalog file not found, using built-in catalog", zap.String("path", path))
		return Default()
	case err != nil:
		logger.Warn("could not read catalog file, using built-in catalog", zap.String("path", path), zap.Error(err))
		return Default()
	}

	postings, err := decode(data)
	if err != nil {
		logger.Warn("could not parse catalog file, using built-in catalog", zap.String("path", path), zap.Error(err))
		return Default()
	}

	logger.Info("catalog loaded", zap.String("path", path), zap.Int("postings", len(postings)))
	return &Catalog{postings: postings}, nil
}

func decode(data []byte) ([]Posting, error) {
	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}

	var postings []Posting
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &postings,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, err
	}

	for i, p := range postings {
		if strings.TrimSpace(p.Title) == "" {
			return nil, fmt.Errorf("posting %d: title is required", i)
		}
	}

	return postings, nil
}

// Len returns the number of postings.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.postings)
}

// Postings returns a copy of all postings in catalog order.
func (c *Catalog) Postings() []Posting {
	if c == nil {
		return []Posting{}
	}
	out := make([]Posting, 0, len(c.postings))
	for _, p := range c.postings {
		out = append(out, p.clone())
	}
	return out
}

// Get returns the posting with the given id.
func (c *Catalog) Get(id int) (Posting, bool) {
	if c == nil {
		return Posting{}, false
	}
	for _, p := range c.postings {
		if p.ID == id {
			return p.clone(), true
		}
	}
	return Posting{}, false
}

// Locations returns the distinct locations in order of first appearance.
func (c *Catalog) Locations() []string {
	return c.distinct(func(p Posting) []string { return []string{p.Location} })
}

// Skills returns the distinct required skills across all postings.
func (c *Catalog) Skills() []string {
	return c.distinct(func(p Posting) []string { return p.Skills })
}

func (c *Catalog) distinct(values func(Posting) []string) []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c.postings {
		for _, v := range values(p) {
			key := strings.ToLower(strings.TrimSpace(v))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}
