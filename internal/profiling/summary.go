package profiling

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/pprof/profile"
)

// FunctionCost is the CPU time attributed to one function.
type FunctionCost struct {
	Name string
	// Flat is time spent in the function itself.
	Flat time.Duration
	// Cum includes time spent in its callees.
	Cum time.Duration
	// Percent is Flat as a share of the profile total.
	Percent float64
}

// Summary lists the most expensive functions of a CPU profile.
type Summary struct {
	Total     time.Duration
	Functions []FunctionCost
}

// SummarizeFile reads a pprof CPU profile from path.
func SummarizeFile(path string, top int) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Summarize(f, top)
}

// Summarize parses a pprof CPU profile and returns the top functions by flat
// time. Ties are broken by name.
func Summarize(r io.Reader, top int) (*Summary, error) {
	p, err := profile.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	idx, err := cpuSampleIndex(p)
	if err != nil {
		return nil, err
	}

	flat := make(map[string]int64)
	cum := make(map[string]int64)
	var total int64

	for _, s := range p.Sample {
		v := s.Value[idx]
		total += v

		seen := make(map[string]bool)
		for depth, loc := range s.Location {
			for li, line := range loc.Line {
				if line.Function == nil {
					continue
				}
				name := line.Function.Name
				if depth == 0 && li == 0 {
					flat[name] += v
				}
				if !seen[name] {
					seen[name] = true
					cum[name] += v
				}
			}
		}
	}

	funcs := make([]FunctionCost, 0, len(cum))
	for name, c := range cum {
		fc := FunctionCost{
			Name: name,
			Flat: time.Duration(flat[name]),
			Cum:  time.Duration(c),
		}
		if total > 0 {
			fc.Percent = float64(flat[name]) / float64(total) * 100
		}
		funcs = append(funcs, fc)
	}

	sort.Slice(funcs, func(i, j int) bool {
		if funcs[i].Flat != funcs[j].Flat {
			return funcs[i].Flat > funcs[j].Flat
		}
		return funcs[i].Name < funcs[j].Name
	})
	if top > 0 && len(funcs) > top {
		funcs = funcs[:top]
	}

	return &Summary{Total: time.Duration(total), Functions: funcs}, nil
}

// cpuSampleIndex finds the nanosecond-valued sample type.
func cpuSampleIndex(p *profile.Profile) (int, error) {
	for i, st := range p.SampleType {
		if st.Unit == "nanoseconds" {
			return i, nil
		}
	}
	return 0, fmt.Errorf("profile has no nanosecond sample type")
}
