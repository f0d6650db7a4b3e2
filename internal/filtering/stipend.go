package filtering

import (
	"context"
	"fmt"
	"strings"

	"github.com/Trivo121/side-projects/internal/matching"
)

// StipendBand selects postings by monthly stipend in thousands.
type StipendBand string

const (
	StipendAll    StipendBand = "all"
	StipendLow    StipendBand = "10K-15K"
	StipendMedium StipendBand = "16K-20K"
	StipendHigh   StipendBand = "21K+"
)

// StipendBands lists the accepted bands.
var StipendBands = []StipendBand{StipendAll, StipendLow, StipendMedium, StipendHigh}

// ParseStipendBand matches raw case-insensitively. An empty value is StipendAll.
func ParseStipendBand(raw string) (StipendBand, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StipendAll, nil
	}
	for _, band := range StipendBands {
		if strings.EqualFold(raw, string(band)) {
			return band, nil
		}
	}
	return "", fmt.Errorf("unknown stipend band %q", raw)
}

// Contains reports whether a stipend of k thousand falls into the band.
func (b StipendBand) Contains(k int) bool {
	switch b {
	case StipendLow:
		return k <= 15
	case StipendMedium:
		return k >= 16 && k <= 20
	case StipendHigh:
		return k >= 21
	default:
		return true
	}
}

type stipendFilter struct {
	toggle
	band StipendBand
}

// NewStipend creates a filter that keeps recommendations inside the configured stipend band.
func NewStipend() Filter {
	return &stipendFilter{band: StipendAll}
}

func (f *stipendFilter) Name() string { return "stipend" }

func (f *stipendFilter) Validate(cfg *Config) error {
	f.band = StipendAll
	if cfg == nil {
		return nil
	}
	band, err := ParseStipendBand(cfg.Stipend)
	if err != nil {
		return err
	}
	f.band = band
	return nil
}

func (f *stipendFilter) Apply(_ context.Context, _ Deps, recs []matching.Recommendation) ([]matching.Recommendation, Step, error) {
	if f.band == StipendAll {
		return recs, Step{Initial: len(recs), Left: len(recs)}, nil
	}
	out, step := keep(recs, func(rec matching.Recommendation) bool {
		// A stipend without digits counts as zero.
		k, _ := rec.StipendThousands()
		return f.band.Contains(k)
	})
	return out, step, nil
}

func (f *stipendFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"band": string(f.band)},
	}
}
