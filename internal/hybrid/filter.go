package hybrid

// Evaluator is the external filter collaborator hybrid retrieval delegates
// to: given a predicate expression and a vector's metadata, it reports
// whether the vector passes. The textual filter language itself is an
// external concern (spec §1 lists it as an out-of-scope collaborator); this
// package only defines the seam.
type Evaluator interface {
	Matches(filter string, metadata map[string]string) (bool, error)
}

// EqualityEvaluator is a minimal default Evaluator good enough to exercise
// the hybrid pipeline end to end: filter is "key=value", matched against the
// metadata map. Callers needing a richer predicate language supply their
// own Evaluator.
type EqualityEvaluator struct{}

// Matches implements Evaluator using a single "key=value" clause.
func (EqualityEvaluator) Matches(filter string, metadata map[string]string) (bool, error) {
	key, value, ok := splitClause(filter)
	if !ok {
		return true, nil
	}
	return metadata[key] == value, nil
}

func splitClause(filter string) (key, value string, ok bool) {
	for i := 0; i < len(filter); i++ {
		if filter[i] == '=' {
			return filter[:i], filter[i+1:], true
		}
	}
	return "", "", false
}
