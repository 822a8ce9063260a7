package retry

// Override is the per-handle retry configuration slot. It distinguishes
// "explicitly set" (including explicitly disabled) from "defer to the live
// process default". The zero value defers.
type Override struct {
	policy   *Policy
	explicit bool
}

// Deferred returns an override that consults the current process default at
// the time of each operation.
func Deferred() Override {
	return Override{}
}

// Explicit pins the handle to a copy of the given policy. Later changes to
// the process default do not affect it. Passing nil pins the handle to a
// disabled policy.
func Explicit(p *Policy) Override {
	if p == nil {
		p = Disabled()
	}
	return Override{policy: p.Clone(), explicit: true}
}

// IsExplicit reports whether the override pins a specific policy rather than
// deferring to the process default.
func (o Override) IsExplicit() bool {
	return o.explicit
}

// Policy returns the pinned policy, or nil when the override defers.
func (o Override) Policy() *Policy {
	if !o.explicit {
		return nil
	}
	return o.policy.Clone()
}

// Resolve returns the effective policy: a copy of the pinned policy when
// explicit, otherwise the live process default.
func (o Override) Resolve() *Policy {
	return o.ResolveIn(std)
}

// ResolveIn resolves against a specific defaults slot instead of the
// process-wide one.
func (o Override) ResolveIn(d *Defaults) *Policy {
	if o.explicit {
		return o.policy.Clone()
	}
	return d.Get()
}
