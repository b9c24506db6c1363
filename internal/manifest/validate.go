package manifest

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"
)

// decodeEvent decodes and validates one event declaration.
func decodeEvent(name string, val cue.Value) (EventDecl, []error) {
	var doc struct {
		Phases      []string     `json:"phases"`
		Constraints []Constraint `json:"constraints"`
	}
	if err := val.Decode(&doc); err != nil {
		return EventDecl{}, []error{&LoadError{
			Code:    ErrCodeGeneric,
			Message: fmt.Sprintf("decoding event %q: %v", name, err),
			Pos:     val.Pos(),
		}}
	}

	decl := EventDecl{Name: name, Phases: doc.Phases, Constraints: doc.Constraints}
	return decl, validateEvent(decl, val.Pos())
}

// validateEvent checks declaration shape. Cycles are not checked here: a
// cyclic constraint set is a legal manifest.
func validateEvent(decl EventDecl, pos token.Pos) []error {
	var errs []error

	if decl.Name == "" {
		errs = append(errs, &LoadError{
			Code:    ErrCodeEmptyEventName,
			Message: "event name must not be empty",
			Pos:     pos,
		})
	}

	seen := make(map[string]struct{}, len(decl.Phases))
	for _, id := range decl.Phases {
		if id == "" {
			errs = append(errs, &LoadError{
				Code:    ErrCodeEmptyPhase,
				Message: fmt.Sprintf("event %q: empty phase id in baseline chain", decl.Name),
				Pos:     pos,
			})
			continue
		}
		if _, dup := seen[id]; dup {
			errs = append(errs, &LoadError{
				Code:    ErrCodeDuplicatePhase,
				Message: fmt.Sprintf("event %q: duplicate baseline phase %q", decl.Name, id),
				Pos:     pos,
			})
			continue
		}
		seen[id] = struct{}{}
	}

	for _, c := range decl.Constraints {
		if c.Before == "" || c.After == "" {
			errs = append(errs, &LoadError{
				Code:    ErrCodeEmptyConstraint,
				Message: fmt.Sprintf("event %q: constraint with an empty endpoint", decl.Name),
				Pos:     pos,
			})
			continue
		}
		if c.Before == c.After {
			errs = append(errs, &LoadError{
				Code:    ErrCodeSelfConstraint,
				Message: fmt.Sprintf("event %q: phase %q cannot be ordered before itself", decl.Name, c.Before),
				Pos:     pos,
			})
		}
	}

	return errs
}
