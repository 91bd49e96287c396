package rotation

// Engine composes per-section rotation windows into one ordered selection.
// The zero value is ready to use and computes every permutation on demand.
type Engine struct {
	cache *PermutationCache
}

// NewEngine creates an Engine. cache may be nil.
func NewEngine(cache *PermutationCache) *Engine {
	return &Engine{cache: cache}
}

type pick struct {
	id      string
	section string
}

// Identifiers returns the ordered item identifiers for one attempt. With no
// sections it returns bankIDs unchanged; otherwise each section contributes its
// window, in section order, for the same attempt number.
func (e *Engine) Identifiers(spec TestSpec, bankIDs []string, req Request) ([]string, error) {
	picks, err := e.compose(spec, bankIDs, req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(picks))
	for i, p := range picks {
		ids[i] = p.id
	}
	return ids, nil
}

func (e *Engine) compose(spec TestSpec, bankIDs []string, req Request) ([]pick, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	if len(spec.Sections) == 0 {
		out := make([]pick, len(bankIDs))
		for i, id := range bankIDs {
			out[i] = pick{id: id}
		}
		return out, nil
	}

	total := 0
	for _, sec := range spec.Sections {
		total += EffectiveCount(len(sec.ItemIdentifiers), sec.SelectCount)
	}

	out := make([]pick, 0, total)
	for _, sec := range spec.Sections {
		n := len(sec.ItemIdentifiers)
		if n == 0 {
			continue
		}
		perm := e.permutation(sec, req)
		k := EffectiveCount(n, sec.SelectCount)
		for _, idx := range Window(perm, k, req.AttemptNumber) {
			out = append(out, pick{id: sec.ItemIdentifiers[idx], section: sec.Identifier})
		}
	}
	return out, nil
}

func (e *Engine) permutation(sec SectionSpec, req Request) []int {
	n := len(sec.ItemIdentifiers)
	if e == nil || e.cache == nil {
		seed := DeriveSeed(req.BaseSeed, req.UserSourcedID, req.ResourceSourcedID, sec.Identifier)
		return PermuterFor(sec.Shuffle).Permute(seed, n)
	}

	key := permutationKey{
		baseSeed: req.BaseSeed,
		user:     req.UserSourcedID,
		resource: req.ResourceSourcedID,
		section:  sec.Identifier,
		size:     n,
		shuffle:  sec.Shuffle,
	}
	if perm, ok := e.cache.get(key); ok {
		return perm
	}
	seed := DeriveSeed(req.BaseSeed, req.UserSourcedID, req.ResourceSourcedID, sec.Identifier)
	perm := PermuterFor(sec.Shuffle).Permute(seed, n)
	e.cache.add(key, perm)
	return perm
}

// SectionPlan summarizes how a section rotates.
type SectionPlan struct {
	Identifier  string `json:"identifier"`
	Shuffle     bool   `json:"shuffle"`
	Size        int    `json:"size"`
	PerAttempt  int    `json:"per_attempt"`
	CycleLength int    `json:"cycle_length"`
}

// Plan reports n, k and cycle length for every section.
func Plan(spec TestSpec) []SectionPlan {
	plans := make([]SectionPlan, 0, len(spec.Sections))
	for _, sec := range spec.Sections {
		n := len(sec.ItemIdentifiers)
		k := EffectiveCount(n, sec.SelectCount)
		plans = append(plans, SectionPlan{
			Identifier:  sec.Identifier,
			Shuffle:     sec.Shuffle,
			Size:        n,
			PerAttempt:  k,
			CycleLength: CycleLength(n, k),
		})
	}
	return plans
}
