package trajectory

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Policy is one arm of a comparison: no intervention or one of the
// intervention types.
type Policy string

// NoIntervention is the baseline arm.
const NoIntervention Policy = "no_intervention"

// Policies returns the comparison arms in presentation order.
func Policies() []Policy {
	out := []Policy{NoIntervention}
	for _, t := range InterventionTypes() {
		out = append(out, Policy(t))
	}
	return out
}

// Default comparison settings.
const (
	DefaultMonths     = 24
	DefaultStartMonth = 3
)

// CompareOptions configure a comparison. Zero Months and StartMonth fall
// back to the defaults; a zero Seed draws from the clock.
type CompareOptions struct {
	Months     int
	StartMonth int
	Seed       int64
}

func (o CompareOptions) withDefaults() CompareOptions {
	if o.Months == 0 {
		o.Months = DefaultMonths
	}
	if o.StartMonth == 0 {
		o.StartMonth = DefaultStartMonth
	}
	return o
}

// Run is one policy's trajectory.
type Run struct {
	Policy     Policy     `json:"policy"`
	Trajectory Trajectory `json:"trajectory"`
}

// Comparison holds one run per policy, in Policies order.
type Comparison struct {
	Months     int   `json:"months"`
	StartMonth int   `json:"start_month"`
	Seed       int64 `json:"seed"`
	Runs       []Run `json:"runs"`
}

// Get returns the run for a policy.
func (c Comparison) Get(p Policy) (Run, bool) {
	for _, r := range c.Runs {
		if r.Policy == p {
			return r, true
		}
	}
	return Run{}, false
}

// Best returns the run with the highest final mental health. Ties go to
// the earlier policy.
func (c Comparison) Best() (Run, bool) {
	if len(c.Runs) == 0 {
		return Run{}, false
	}
	best := c.Runs[0]
	for _, r := range c.Runs[1:] {
		if r.Trajectory.Final.MentalHealth > best.Trajectory.Final.MentalHealth {
			best = r
		}
	}
	return best, true
}

// Compare simulates the profile under every policy. Runs are independent
// and execute concurrently; run i draws from its own source seeded with
// seed+i, so a fixed seed reproduces the whole comparison. Only the
// comparison seed itself falls back to the clock when zero; a per-run
// seed that lands on zero is used as is.
func (m *Model) Compare(ctx context.Context, p Profile, opts CompareOptions) (Comparison, error) {
	opts = opts.withDefaults()
	if err := p.Validate(); err != nil {
		return Comparison{}, err
	}
	if opts.Months < 0 {
		return Comparison{}, fmt.Errorf("%w: duration must be >= 0 months, got %d", ErrInvalidProfile, opts.Months)
	}
	if opts.StartMonth < 1 {
		return Comparison{}, fmt.Errorf("%w: start month must be >= 1, got %d", ErrInvalidIntervention, opts.StartMonth)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = timeSeed()
	}

	policies := Policies()
	runs := make([]Run, len(policies))

	g, ctx := errgroup.WithContext(ctx)
	for i, pol := range policies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var iv *Intervention
			if pol != NoIntervention {
				iv = &Intervention{Type: InterventionType(pol), StartMonth: opts.StartMonth}
			}
			tr, err := m.Simulate(p, opts.Months, iv, newSource(seed+int64(i)))
			if err != nil {
				return fmt.Errorf("policy %s: %w", pol, err)
			}
			runs[i] = Run{Policy: pol, Trajectory: tr}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Comparison{}, err
	}

	return Comparison{
		Months:     opts.Months,
		StartMonth: opts.StartMonth,
		Seed:       seed,
		Runs:       runs,
	}, nil
}
