package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/cltlab/internal/dist"
)

// Registry maps source names to constructors that apply a parameter
// map. Every command and scenario step goes through it, so a typo in
// a source or parameter name fails before any trial runs.
type Registry struct {
	sources map[string]func(params map[string]float64) (dist.Source, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		sources: make(map[string]func(map[string]float64) (dist.Source, error)),
	}

	r.sources["coin"] = func(params map[string]float64) (dist.Source, error) {
		c := dist.NewCoin()
		for name, v := range params {
			if err := c.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		return c, nil
	}

	r.sources["uniform"] = func(params map[string]float64) (dist.Source, error) {
		u := dist.NewUniform()
		// Assign both bounds before validating so lo/hi can move
		// together past the old interval.
		for name, v := range params {
			switch name {
			case "lo":
				u.Lo = v
			case "hi":
				u.Hi = v
			default:
				return nil, fmt.Errorf("%w: %s", dist.ErrUnknownParam, name)
			}
		}
		if u.Hi <= u.Lo {
			return nil, fmt.Errorf("%w: uniform interval [%g,%g) is empty", dist.ErrParamBounds, u.Lo, u.Hi)
		}
		return u, nil
	}

	r.sources["die"] = func(params map[string]float64) (dist.Source, error) {
		d := dist.NewDie()
		for name, v := range params {
			if err := d.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		return d, nil
	}

	r.sources["exponential"] = func(params map[string]float64) (dist.Source, error) {
		e := dist.NewExponential()
		for name, v := range params {
			if err := e.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		return e, nil
	}

	r.sources["bimodal"] = func(params map[string]float64) (dist.Source, error) {
		b := dist.NewBimodal()
		for name, v := range params {
			if err := b.SetParam(name, v); err != nil {
				return nil, err
			}
		}
		return b, nil
	}

	return r
}

func (r *Registry) NewSource(name string, params map[string]float64) (dist.Source, error) {
	fn, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown source: %s (available: %v)", name, r.Sources())
	}
	return fn(params)
}

func (r *Registry) Sources() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
