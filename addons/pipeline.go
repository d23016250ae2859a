package addons

import (
	"devrelay/logger"
)

// Pipeline applies the enabled addons to each intercepted exchange. The
// sequence is built once at startup and is immutable afterwards, so
// Handle is safe to call from concurrent transport goroutines.
type Pipeline struct {
	addons []Addon
}

// NewPipeline builds the enabled addon sequence: registry order minus
// the disabled canonical names. Disabled addons are skipped, never
// reordered.
func NewPipeline(disabled []string) *Pipeline {
	off := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		off[name] = true
	}
	p := &Pipeline{}
	for _, e := range registry {
		if off[e.canonical] {
			continue
		}
		p.addons = append(p.addons, e.build())
	}
	return p
}

// Enabled returns the canonical names of the addons that will run, in
// evaluation order.
func (p *Pipeline) Enabled() []string {
	out := make([]string, 0, len(p.addons))
	for _, a := range p.addons {
		out = append(out, a.Name())
	}
	return out
}

// Handle runs every enabled addon against the exchange in order. A
// panicking addon is logged and isolated: the remaining addons still run
// for this exchange and all later ones.
func (p *Pipeline) Handle(ex *Exchange) {
	for _, a := range p.addons {
		apply(a, ex)
	}
}

func apply(a Addon, ex *Exchange) {
	defer func() {
		if r := recover(); r != nil {
			logger.ProxyError("Addon %s panicked on %s exchange: %v", a.Name(), ex.Method, r)
		}
	}()
	a.Apply(ex)
}
