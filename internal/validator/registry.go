// Package validator implements the named, pluggable validation registry.
// Validators are values implementing domain.Validator, keyed by name;
// registration order drives default execution order. A registry is plain
// injectable state so tests can run with isolated instances.
package validator

import (
	"fmt"

	"github.com/contractkit/protokit-go/internal/domain"
)

// Registry maps validator names to implementations while preserving
// registration order. Registering under a name already in use overwrites
// the prior entry (last registration wins) and keeps its original position.
// Concurrent registration must be serialized by the host.
type Registry struct {
	order  []string
	byName map[string]domain.Validator
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{byName: map[string]domain.Validator{}}
}

// NewDefaultRegistry creates a registry with the builtin validators
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// Register adds or replaces a validator
func (r *Registry) Register(v domain.Validator) {
	name := v.Name()
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = v
}

// RegisterFunc registers a plain function as a validator
func (r *Registry) RegisterFunc(name string, fn func(domain.Manifest) domain.Result) {
	r.Register(domain.ValidatorFunc{ValidatorName: name, Fn: fn})
}

// Names returns the registered names in registration order
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Run executes either the requested validators (in the requested order) or
// every registered one (in registration order) and aggregates the results.
// A failing or even panicking validator never aborts the batch: faults are
// converted into synthetic error-level issues and the run continues.
func (r *Registry) Run(m domain.Manifest, names ...string) domain.Report {
	selected := names
	if len(selected) == 0 {
		selected = r.order
	}

	report := domain.Report{OK: true, Results: []domain.ValidatorResult{}}
	for _, name := range selected {
		v, ok := r.byName[name]
		if !ok {
			report.OK = false
			report.Results = append(report.Results, domain.ValidatorResult{
				Name: name,
				OK:   false,
				Issues: []domain.Issue{{
					Msg:   fmt.Sprintf("%v: %s", domain.ErrUnknownValidator, name),
					Level: domain.LevelError,
				}},
			})
			continue
		}

		res := runSafe(v, m)
		if !res.OK {
			report.OK = false
		}
		report.Results = append(report.Results, domain.ValidatorResult{
			Name:   name,
			OK:     res.OK,
			Issues: res.Issues,
		})
	}
	return report
}

// runSafe shields the batch from validator implementations that panic
func runSafe(v domain.Validator, m domain.Manifest) (res domain.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			fault := &domain.ValidatorFault{Validator: v.Name(), Recovered: rec}
			res = domain.Result{
				OK:     false,
				Issues: []domain.Issue{{Msg: fault.Error(), Level: domain.LevelError}},
			}
		}
	}()
	return v.Validate(m)
}
