// internal/config/option.go
//
// Presence-aware optional string for build arguments.
//
// Context
// -------
// Shell-style `${ARG:-default}` substitution cannot tell a deliberately
// empty override apart from an argument that was never supplied.  Optional
// makes that distinction explicit: the default substitutes only when the
// argument is truly unset, and an empty override survives as the empty
// string, exactly as written.
//
// The loader constructs these from `os.LookupEnv` (which reports presence)
// and from Koanf key existence; CLI flags construct them via Some when the
// flag was changed.

package config

// Optional is a string build argument that remembers whether it was
// supplied.  The zero value is "unset".
type Optional struct {
	value string
	set   bool
}

// Some returns an Optional carrying v, including an explicitly empty v.
func Some(v string) Optional { return Optional{value: v, set: true} }

// None returns the unset Optional.  Provided for symmetry with Some; the
// zero value is equivalent.
func None() Optional { return Optional{} }

// IsSet reports whether a value was supplied at all.
func (o Optional) IsSet() bool { return o.set }

// Value returns the supplied value and whether one was supplied.
func (o Optional) Value() (string, bool) { return o.value, o.set }

// ValueOr returns the supplied value when one was supplied, else def.  An
// explicitly empty value is NOT replaced by def.
func (o Optional) ValueOr(def string) string {
	if o.set {
		return o.value
	}
	return def
}
