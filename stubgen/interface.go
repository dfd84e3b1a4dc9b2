package stubgen

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teranos/callgen/descriptor"
	"github.com/teranos/callgen/errors"
	"github.com/teranos/callgen/logger"
)

// Result holds the outcome of generating every method of one interface.
// Methods are independent: a failure is recorded against its method and
// the others still produce their sets.
type Result struct {
	Interface *descriptor.InterfaceDescriptor
	// Sets is in method order; failed methods leave a nil slot.
	Sets   []*ArtifactSet
	Errors map[string]error
}

// OK reports whether every method generated.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// Err joins the per-method errors in method order.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	var errs []error
	for _, m := range r.Interface.Methods {
		if err, ok := r.Errors[m.Name]; ok {
			errs = append(errs, errors.Wrapf(err, "%s.%s", r.Interface.Name, m.Name))
		}
	}
	return errors.Join(errs...)
}

// Generated returns the sets that succeeded, in method order.
func (r *Result) Generated() []*ArtifactSet {
	out := make([]*ArtifactSet, 0, len(r.Sets))
	for _, s := range r.Sets {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// GenerateInterface runs Generate for every method of iface concurrently,
// bounded by opts.Parallelism.
func GenerateInterface(ctx context.Context, iface *descriptor.InterfaceDescriptor, opts Options) *Result {
	start := time.Now()
	log := logger.ComponentLogger("stubgen")

	sets := make([]*ArtifactSet, len(iface.Methods))
	errs := make([]error, len(iface.Methods))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Parallelism > 0 {
		g.SetLimit(opts.Parallelism)
	}
	for i := range iface.Methods {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			m := &iface.Methods[i]
			set, err := Generate(m, iface, opts)
			if err != nil {
				errs[i] = err
				log.Debugw("Method generation failed",
					logger.FieldMethod, m.Name,
					logger.FieldErrorKind, kindName(err),
					logger.FieldError, err)
				return nil
			}
			sets[i] = set
			return nil
		})
	}
	// Workers never return errors; failures stay per method.
	_ = g.Wait()

	result := &Result{Interface: iface, Sets: sets, Errors: map[string]error{}}
	for i, err := range errs {
		if err != nil {
			result.Errors[iface.Methods[i].Name] = err
		}
	}
	log.Infow("Generated interface",
		logger.FieldInterface, iface.Name,
		logger.FieldCount, len(result.Generated()),
		"failed", len(result.Errors),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return result
}

func kindName(err error) string {
	if k := errors.Kind(err); k != nil {
		return k.Error()
	}
	return "unknown"
}
