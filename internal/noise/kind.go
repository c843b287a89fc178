package noise

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Type tags a noise variant.
type Type string

const (
	TypeNone         Type = "none"
	TypeWhite        Type = "white"
	TypeProportional Type = "proportional"
	TypeDemographic  Type = "demographic"
	TypeOU           Type = "ou"
)

// Kind is a noise variant together with its parameters. Only the fields
// relevant to Type are read.
type Kind struct {
	Type  Type    `yaml:"type" json:"type"`
	Sigma float64 `yaml:"sigma,omitempty" json:"sigma,omitempty"`
	Tau   float64 `yaml:"tau,omitempty" json:"tau,omitempty"`
}

func None() Kind { return Kind{Type: TypeNone} }

// White draws independent N(0, sigma^2 dt) increments per component.
func White(sigma float64) Kind { return Kind{Type: TypeWhite, Sigma: sigma} }

// Proportional scales each increment by the component's share.
func Proportional(sigma float64) Kind { return Kind{Type: TypeProportional, Sigma: sigma} }

// Demographic scales each increment by the square root of the component's share,
// so it vanishes at extinction.
func Demographic(sigma float64) Kind { return Kind{Type: TypeDemographic, Sigma: sigma} }

// OrnsteinUhlenbeck is exponentially correlated noise with stationary
// standard deviation sigma and correlation time tau.
func OrnsteinUhlenbeck(sigma, tau float64) Kind {
	return Kind{Type: TypeOU, Sigma: sigma, Tau: tau}
}

// Kinds returns one representative of every variant.
func Kinds() []Kind {
	return []Kind{
		None(),
		White(0.1),
		Proportional(0.1),
		Demographic(0.1),
		OrnsteinUhlenbeck(0.1, 1.0),
	}
}

// IsNone reports whether k produces no perturbation. The zero Kind is none.
func (k Kind) IsNone() bool {
	return k.Type == "" || k.Type == TypeNone
}

func (k Kind) String() string {
	switch k.normalized().Type {
	case TypeNone:
		return "none"
	case TypeOU:
		return fmt.Sprintf("ou(sigma=%g, tau=%g)", k.Sigma, k.Tau)
	default:
		return fmt.Sprintf("%s(sigma=%g)", k.Type, k.Sigma)
	}
}

func (k Kind) normalized() Kind {
	if k.Type == "" {
		k.Type = TypeNone
	}
	return k
}

// Validate checks the parameters of the variant.
func (k Kind) Validate() error {
	k = k.normalized()
	switch k.Type {
	case TypeNone:
		return nil
	case TypeWhite, TypeProportional, TypeDemographic:
		return checkSigma(k.Type, k.Sigma)
	case TypeOU:
		if err := checkSigma(k.Type, k.Sigma); err != nil {
			return err
		}
		if !(k.Tau > 0) || math.IsInf(k.Tau, 0) {
			return &ParamError{Kind: k.Type, Param: "tau", Value: k.Tau, Reason: "must be positive and finite"}
		}
		return nil
	default:
		return &ParamError{Kind: k.Type, Param: "type", Value: string(k.Type), Reason: "unknown noise kind"}
	}
}

func checkSigma(t Type, sigma float64) error {
	if sigma < 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return &ParamError{Kind: t, Param: "sigma", Value: sigma, Reason: "must be non-negative and finite"}
	}
	return nil
}

// ParseKind builds a Kind from a name and a loosely typed parameter map,
// as found in config files and CLI flags.
func ParseKind(name string, params map[string]any) (Kind, error) {
	k := Kind{Type: Type(strings.ToLower(strings.TrimSpace(name)))}
	if k.Type == "" {
		k.Type = TypeNone
	}
	for key, raw := range params {
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return Kind{}, &ParamError{Kind: k.Type, Param: key, Value: raw, Reason: "not a number"}
		}
		switch strings.ToLower(key) {
		case "sigma":
			k.Sigma = v
		case "tau":
			k.Tau = v
		default:
			return Kind{}, &ParamError{Kind: k.Type, Param: key, Value: raw, Reason: "unknown parameter"}
		}
	}
	if err := k.Validate(); err != nil {
		return Kind{}, err
	}
	return k, nil
}

// TypeNames lists the accepted noise type names.
func TypeNames() []string {
	names := make([]string, 0, len(Kinds()))
	for _, k := range Kinds() {
		names = append(names, string(k.Type))
	}
	sort.Strings(names)
	return names
}

// ParamError reports a malformed noise parameter.
type ParamError struct {
	Kind   Type
	Param  string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("noise %s: %s=%v: %s", e.Kind, e.Param, e.Value, e.Reason)
}
