// Package validator provides small declarative validation rules.
//
// Each helper returns a Rule holding a Check func and the ValidationError to
// report when the check fails. Apply evaluates a list of rules and aggregates
// failures into ValidationErrors, which implements error:
//
//	err := validator.Apply(
//	    validator.RequiredString("title", title),
//	    validator.MaxRunes("title", title, 255),
//	    validator.ClockTime("window_start", start),
//	)
//	if verrs := validator.Extract(err); verrs != nil {
//	    for _, f := range verrs.Fields() { ... }
//	}
//
// Extract uses errors.As, so it also finds ValidationErrors inside a value
// produced by errors.Join.
package validator
