package rotation

// Materialize resolves identifiers to bank content in order. The first
// identifier missing from the bank aborts with a *MissingReferenceError.
func Materialize[C any](ids []string, bank *Bank[C]) ([]C, error) {
	out := make([]C, 0, len(ids))
	for _, id := range ids {
		c, ok := bank.Lookup(id)
		if !ok {
			return nil, &MissingReferenceError{Identifier: id}
		}
		out = append(out, c)
	}
	return out, nil
}

// Select runs the full pipeline without memoization.
func Select[C any](spec TestSpec, bank *Bank[C], req Request) ([]C, error) {
	return SelectWith(nil, spec, bank, req)
}

// SelectWith runs the full pipeline on e, which may be nil.
func SelectWith[C any](e *Engine, spec TestSpec, bank *Bank[C], req Request) ([]C, error) {
	picks, err := e.compose(spec, bank.IDs(), req)
	if err != nil {
		return nil, err
	}
	out := make([]C, 0, len(picks))
	for _, p := range picks {
		c, ok := bank.Lookup(p.id)
		if !ok {
			return nil, &MissingReferenceError{Identifier: p.id, Section: p.section}
		}
		out = append(out, c)
	}
	return out, nil
}
