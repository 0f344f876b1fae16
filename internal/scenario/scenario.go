package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/psyche/internal/core/memory"
	"github.com/zeusync/psyche/internal/core/observability/log"
	"github.com/zeusync/psyche/internal/core/psyche"
)

var (
	ErrInvalidStep = errors.New("invalid scenario step")
	ErrUnknownRef  = errors.New("unknown memory reference")
)

// Document is a scripted sequence of engine operations.
type Document struct {
	Name  string    `yaml:"name"`
	Start time.Time `yaml:"start"`
	Steps []Step    `yaml:"steps"`
}

// Step holds exactly one operation.
type Step struct {
	Memory         *MemoryStep          `yaml:"memory,omitempty"`
	Action         *psyche.ActionReport `yaml:"action,omitempty"`
	HappinessEvent *HappinessStep       `yaml:"happiness_event,omitempty"`
	Access         string               `yaml:"access,omitempty"`
	Forget         *ForgetStep          `yaml:"forget,omitempty"`
	Associate      []string             `yaml:"associate,omitempty"`
	Dissociate     []string             `yaml:"dissociate,omitempty"`
	Repress        string               `yaml:"repress,omitempty"`
	Recover        string               `yaml:"recover,omitempty"`
	Consolidate    string               `yaml:"consolidate,omitempty"`
	Capacity       *int                 `yaml:"capacity,omitempty"`
	Advance        *time.Duration       `yaml:"advance,omitempty"`
	Decay          *time.Duration       `yaml:"decay,omitempty"`
	Recompute      bool                 `yaml:"recompute,omitempty"`
	Assess         bool                 `yaml:"assess,omitempty"`
}

type MemoryStep struct {
	Ref                  string `yaml:"ref"`
	psyche.MemoryRequest `yaml:",inline"`
}

type ForgetStep struct {
	Ref   string `yaml:"ref"`
	Force bool   `yaml:"force"`
}

type HappinessStep struct {
	Type      string  `yaml:"type"`
	Impact    float64 `yaml:"impact"`
	Intensity float64 `yaml:"intensity"`
}

// Kind names the operation a step holds, or returns ErrInvalidStep when it
// holds none or several.
func (s Step) Kind() (string, error) {
	set := make([]string, 0, 1)
	add := func(ok bool, name string) {
		if ok {
			set = append(set, name)
		}
	}
	add(s.Memory != nil, "memory")
	add(s.Action != nil, "action")
	add(s.HappinessEvent != nil, "happiness_event")
	add(s.Access != "", "access")
	add(s.Forget != nil, "forget")
	add(s.Associate != nil, "associate")
	add(s.Dissociate != nil, "dissociate")
	add(s.Repress != "", "repress")
	add(s.Recover != "", "recover")
	add(s.Consolidate != "", "consolidate")
	add(s.Capacity != nil, "capacity")
	add(s.Advance != nil, "advance")
	add(s.Decay != nil, "decay")
	add(s.Recompute, "recompute")
	add(s.Assess, "assess")

	switch len(set) {
	case 0:
		return "", fmt.Errorf("%w: no operation", ErrInvalidStep)
	case 1:
		return set[0], nil
	default:
		return "", fmt.Errorf("%w: several operations %v", ErrInvalidStep, set)
	}
}

// refs lists the memory references a step reads.
func (s Step) refs() []string {
	switch {
	case s.Access != "":
		return []string{s.Access}
	case s.Forget != nil:
		return []string{s.Forget.Ref}
	case s.Associate != nil:
		return s.Associate
	case s.Dissociate != nil:
		return s.Dissociate
	case s.Repress != "":
		return []string{s.Repress}
	case s.Recover != "":
		return []string{s.Recover}
	case s.Consolidate != "":
		return []string{s.Consolidate}
	}
	return nil
}

// Load decodes and validates a scenario document. Unknown fields are
// rejected.
func Load(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks that every step holds one operation and that every
// reference is defined by an earlier memory step.
func (d *Document) Validate() error {
	defined := make(map[string]struct{})
	for i, step := range d.Steps {
		kind, err := step.Kind()
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if (kind == "associate" || kind == "dissociate") && len(step.refs()) != 2 {
			return fmt.Errorf("step %d: %w: %s needs two references", i+1, ErrInvalidStep, kind)
		}
		for _, ref := range step.refs() {
			if _, ok := defined[ref]; !ok {
				return fmt.Errorf("step %d: %w %q", i+1, ErrUnknownRef, ref)
			}
		}
		if step.Memory != nil && step.Memory.Ref != "" {
			if _, dup := defined[step.Memory.Ref]; dup {
				return fmt.Errorf("step %d: %w: reference %q defined twice", i+1, ErrInvalidStep, step.Memory.Ref)
			}
			defined[step.Memory.Ref] = struct{}{}
		}
	}
	return nil
}

// Runner executes fn against an engine. host.Driver is a Runner.
type Runner interface {
	Do(ctx context.Context, fn func(*psyche.Engine) error) error
}

// Direct runs steps on an engine owned by the caller.
type Direct struct{ Engine *psyche.Engine }

func (d Direct) Do(ctx context.Context, fn func(*psyche.Engine) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(d.Engine)
}

// Refs maps scenario references to the ids the engine assigned.
type Refs map[string]memory.ID

// Play runs every step in order through r. Advance steps move clock; all
// other steps go through the runner. Play stops at the first failing step.
func (d *Document) Play(ctx context.Context, r Runner, clock *Clock, logger log.Log) (Refs, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With(log.String("scenario", d.Name))

	if !d.Start.IsZero() && clock != nil {
		clock.Set(d.Start)
	}

	refs := make(Refs)
	for i, step := range d.Steps {
		kind, err := step.Kind()
		if err != nil {
			return refs, fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.Advance != nil {
			if clock == nil {
				return refs, fmt.Errorf("step %d: %w: advance without a clock", i+1, ErrInvalidStep)
			}
			now := clock.Advance(*step.Advance)
			logger.Debug("clock advanced", log.Int("step", i+1), log.Time("now", now))
			continue
		}

		if err := r.Do(ctx, func(e *psyche.Engine) error { return apply(e, step, refs) }); err != nil {
			return refs, fmt.Errorf("step %d (%s): %w", i+1, kind, err)
		}
		logger.Debug("step applied", log.Int("step", i+1), log.String("kind", kind))
	}
	logger.Info("scenario finished", log.Int("steps", len(d.Steps)), log.Int("memories", len(refs)))
	return refs, nil
}

func apply(e *psyche.Engine, s Step, refs Refs) error {
	id := func(ref string) (memory.ID, error) {
		v, ok := refs[ref]
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrUnknownRef, ref)
		}
		return v, nil
	}
	pair := func(rs []string, fn func(a, b memory.ID) error) error {
		a, err := id(rs[0])
		if err != nil {
			return err
		}
		b, err := id(rs[1])
		if err != nil {
			return err
		}
		return fn(a, b)
	}
	one := func(ref string, fn func(memory.ID) error) error {
		v, err := id(ref)
		if err != nil {
			return err
		}
		return fn(v)
	}

	switch {
	case s.Memory != nil:
		created, err := e.CreateMemory(s.Memory.MemoryRequest)
		if err != nil {
			return err
		}
		if s.Memory.Ref != "" {
			refs[s.Memory.Ref] = created
		}
	case s.Action != nil:
		return e.ReportAction(*s.Action)
	case s.HappinessEvent != nil:
		_, err := e.RecordHappinessEvent(s.HappinessEvent.Type, s.HappinessEvent.Impact, s.HappinessEvent.Intensity)
		return err
	case s.Access != "":
		return one(s.Access, func(v memory.ID) error {
			if !e.Access(v) {
				return fmt.Errorf("%w: %d", memory.ErrNotFound, v)
			}
			return nil
		})
	case s.Forget != nil:
		return one(s.Forget.Ref, func(v memory.ID) error { return e.Forget(v, s.Forget.Force) })
	case s.Associate != nil:
		return pair(s.Associate, e.Associate)
	case s.Dissociate != nil:
		return pair(s.Dissociate, e.Dissociate)
	case s.Repress != "":
		return one(s.Repress, e.Repress)
	case s.Recover != "":
		return one(s.Recover, e.Recover)
	case s.Consolidate != "":
		return one(s.Consolidate, e.Consolidate)
	case s.Capacity != nil:
		e.SetMemoryCapacity(*s.Capacity)
	case s.Decay != nil:
		e.DecayTick(*s.Decay)
	case s.Recompute:
		e.RecomputeHappiness()
	case s.Assess:
		e.AssessValues()
	}
	return nil
}
