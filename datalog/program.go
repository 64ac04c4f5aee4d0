package datalog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/cruxgen/logger"
)

// Rule derives facts by reading relations and inserting into others.
type Rule func()

type namedRule struct {
	name string
	fn   Rule
}

// Stratum is a set of rules evaluated together to a fixpoint.
type Stratum struct {
	name      string
	base      []namedRule
	recursive []namedRule
	outputs   []Tracked
}

// Base adds a rule that runs once, in the first round of the stratum.
func (s *Stratum) Base(name string, fn Rule) *Stratum {
	s.base = append(s.base, namedRule{name, fn})
	return s
}

// Recursive adds a rule that runs every round until the stratum's outputs stop growing.
// It should read the Recent facts of the stratum's own outputs.
func (s *Stratum) Recursive(name string, fn Rule) *Stratum {
	s.recursive = append(s.recursive, namedRule{name, fn})
	return s
}

// Program is an ordered list of strata.
type Program struct {
	name   string
	strata []*Stratum
	log    *zap.SugaredLogger
}

// NewProgram creates an empty program. A nil log disables logging.
func NewProgram(name string, log *zap.SugaredLogger) *Program {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Program{name: name, log: log}
}

// Stratum appends a stratum whose rules derive into outputs.
func (p *Program) Stratum(name string, outputs ...Tracked) *Stratum {
	s := &Stratum{name: name, outputs: outputs}
	p.strata = append(p.strata, s)
	return s
}

// Stats describes a finished evaluation.
type Stats struct {
	Rounds    map[string]int
	Sizes     map[string]int
	Duration  time.Duration
	Relations []string
}

// Run evaluates every stratum in order. It returns ctx.Err() if the context
// is cancelled between rounds.
func (p *Program) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	stats := Stats{Rounds: make(map[string]int), Sizes: make(map[string]int)}

	for _, s := range p.strata {
		rounds, err := s.run(ctx)
		if err != nil {
			return stats, err
		}
		stats.Rounds[s.name] = rounds
		for _, rel := range s.outputs {
			stats.Sizes[rel.Name()] = rel.Len()
			stats.Relations = append(stats.Relations, rel.Name())
			p.log.Debugw("Relation derived",
				"program", p.name,
				"stratum", s.name,
				logger.FieldRelation, rel.Name(),
				logger.FieldSize, rel.Len(),
				logger.FieldRounds, rounds,
			)
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func (s *Stratum) run(ctx context.Context) (int, error) {
	// facts inserted before this stratum become the first delta
	for _, rel := range s.outputs {
		rel.advance()
	}

	rounds := 0
	for {
		if err := ctx.Err(); err != nil {
			return rounds, err
		}
		if rounds == 0 {
			for _, r := range s.base {
				r.fn()
			}
		}
		for _, r := range s.recursive {
			r.fn()
		}
		rounds++

		changed := false
		for _, rel := range s.outputs {
			if rel.advance() {
				changed = true
			}
		}
		if !changed || len(s.recursive) == 0 {
			return rounds, nil
		}
	}
}
