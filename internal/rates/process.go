package rates

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"bondmc/internal/errs"
)

// ProcessParams holds the mean-reverting short-rate parameters.
type ProcessParams struct {
	MeanReversionSpeed float64 `mapstructure:"mean_reversion_speed"`
	LongTermMean       float64 `mapstructure:"long_term_mean"`
	Volatility         float64 `mapstructure:"volatility"`
	InitialRate        float64 `mapstructure:"initial_rate"`
}

// Validate checks the invariants the process relies on.
func (p ProcessParams) Validate() error {
	if p.Volatility < 0 {
		return errs.Invalid("volatility cannot be negative, got %g", p.Volatility)
	}
	if p.InitialRate < 0 {
		return errs.Invalid("initial rate cannot be negative, got %g", p.InitialRate)
	}
	for name, v := range map[string]float64{
		"mean reversion speed": p.MeanReversionSpeed,
		"long term mean":       p.LongTermMean,
		"volatility":           p.Volatility,
		"initial rate":         p.InitialRate,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errs.Invalid("%s must be finite", name)
		}
	}
	return nil
}

// Path is one realisation of the short rate, one entry per time step.
type Path []float64

// Process evolves the short rate
//
//	dr = κ(θ − r)·dt + σ·√r·dw,  dw ~ N(0, dt)
//
// and truncates negative outcomes to zero. A Process owns its random
// stream and is not safe for concurrent use.
type Process struct {
	params ProcessParams
	rate   float64
	src    rand.Source
}

// NewProcess builds a process starting at params.InitialRate and drawing
// shocks from src.
func NewProcess(params ProcessParams, src rand.Source) (*Process, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Process{params: params, rate: params.InitialRate, src: src}, nil
}

// Rate returns the current short rate.
func (p *Process) Rate() float64 {
	return p.rate
}

// Step advances the process by dt and returns the new rate.
func (p *Process) Step(dt float64) float64 {
	shock := distuv.Normal{Mu: 0, Sigma: math.Sqrt(dt), Src: p.src}
	return p.advance(dt, shock.Rand())
}

func (p *Process) advance(dt, dw float64) float64 {
	dr := p.params.MeanReversionSpeed*(p.params.LongTermMean-p.rate)*dt +
		p.params.Volatility*math.Sqrt(p.rate)*dw
	p.rate = math.Max(0, p.rate+dr)
	return p.rate
}

// GeneratePath calls Step steps times. A second call continues from where
// the first one stopped.
func (p *Process) GeneratePath(steps int, dt float64) (Path, error) {
	if steps <= 0 {
		return nil, errs.Invalid("steps must be greater than zero, got %d", steps)
	}
	if dt <= 0 || math.IsInf(dt, 0) || math.IsNaN(dt) {
		return nil, errs.Invalid("dt must be a positive finite number, got %g", dt)
	}

	path := make(Path, steps)
	for i := range path {
		path[i] = p.Step(dt)
	}
	return path, nil
}
