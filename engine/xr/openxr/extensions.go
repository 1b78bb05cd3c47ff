package openxr

import (
	"slices"

	"github.com/charmbracelet/log"
)

const extensionWords = (int(extensionCount) + 63) / 64

// ExtensionSet is a set of OpenXR extensions. Known extensions are stored as
// bits; vendor or forward-compatible names the engine does not know are kept
// verbatim in Other.
type ExtensionSet struct {
	bits  [extensionWords]uint64
	Other []string
}

// NewExtensionSet creates a set holding the given known extensions.
func NewExtensionSet(exts ...Extension) ExtensionSet {
	var s ExtensionSet
	for _, e := range exts {
		s.Enable(e)
	}
	return s
}

// ExtensionSetFromNames builds a set from registry names, routing unknown names to Other.
//
// Parameters:
//   - names: registry names such as "XR_KHR_vulkan_enable"
//
// Returns:
//   - ExtensionSet: the populated set
func ExtensionSetFromNames(names ...string) ExtensionSet {
	var s ExtensionSet
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// ExtensionSetFromProperties builds the available set from an enumeration result.
func ExtensionSetFromProperties(props []ExtensionProperties) ExtensionSet {
	var s ExtensionSet
	for _, p := range props {
		s.Add(p.Name)
	}
	return s
}

// Enable adds a known extension.
func (s *ExtensionSet) Enable(e Extension) {
	if e < 0 || e >= extensionCount {
		return
	}
	s.bits[e/64] |= 1 << (uint(e) % 64)
}

// Disable removes a known extension.
func (s *ExtensionSet) Disable(e Extension) {
	if e < 0 || e >= extensionCount {
		return
	}
	s.bits[e/64] &^= 1 << (uint(e) % 64)
}

// Has reports whether a known extension is in the set.
func (s ExtensionSet) Has(e Extension) bool {
	if e < 0 || e >= extensionCount {
		return false
	}
	return s.bits[e/64]&(1<<(uint(e)%64)) != 0
}

// Add inserts an extension by registry name.
func (s *ExtensionSet) Add(name string) {
	if e, ok := LookupExtension(name); ok {
		s.Enable(e)
		return
	}
	if !slices.Contains(s.Other, name) {
		s.Other = append(s.Other, name)
	}
}

// HasName reports whether the named extension is in the set.
func (s ExtensionSet) HasName(name string) bool {
	if e, ok := LookupExtension(name); ok {
		return s.Has(e)
	}
	return slices.Contains(s.Other, name)
}

// Names lists every extension in the set: known extensions in declaration order, then Other.
func (s ExtensionSet) Names() []string {
	out := make([]string, 0, s.Len())
	for e := Extension(0); e < extensionCount; e++ {
		if s.Has(e) {
			out = append(out, e.Name())
		}
	}
	return append(out, s.Other...)
}

// Len returns the number of extensions in the set.
func (s ExtensionSet) Len() int {
	n := len(s.Other)
	for _, w := range s.bits {
		for ; w != 0; w &= w - 1 {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the set holds no extension.
func (s ExtensionSet) IsEmpty() bool { return s.Len() == 0 }

// Intersect returns the extensions present in both a and b.
// The result holds the same content regardless of argument order; Other keeps a's ordering.
//
// Parameters:
//   - a: usually the requested set
//   - b: usually the available set
//
// Returns:
//   - ExtensionSet: a ∩ b
func Intersect(a, b ExtensionSet) ExtensionSet {
	var out ExtensionSet
	for i := range out.bits {
		out.bits[i] = a.bits[i] & b.bits[i]
	}
	for _, n := range a.Other {
		if slices.Contains(b.Other, n) && !slices.Contains(out.Other, n) {
			out.Other = append(out.Other, n)
		}
	}
	return out
}

// Union returns the extensions present in a or b.
func Union(a, b ExtensionSet) ExtensionSet {
	var out ExtensionSet
	for i := range out.bits {
		out.bits[i] = a.bits[i] | b.bits[i]
	}
	for _, n := range a.Other {
		out.Add(n)
	}
	for _, n := range b.Other {
		out.Add(n)
	}
	return out
}

// Difference lists the names present in a but missing from b.
//
// Parameters:
//   - a: the set to subtract from
//   - b: the set of names to remove
//
// Returns:
//   - []string: registry names in a \ b
func Difference(a, b ExtensionSet) []string {
	var d ExtensionSet
	for i := range d.bits {
		d.bits[i] = a.bits[i] &^ b.bits[i]
	}
	for _, n := range a.Other {
		if !slices.Contains(b.Other, n) {
			d.Other = append(d.Other, n)
		}
	}
	return d.Names()
}

// IsSubset reports whether every extension of sub is also in super.
func IsSubset(sub, super ExtensionSet) bool {
	return len(Difference(sub, super)) == 0
}

// Negotiate intersects the requested extensions with what the runtime offers.
// Requested extensions the runtime lacks are logged as warnings; losing an
// optional capability is recoverable.
//
// Parameters:
//   - requested: the extensions the application asked for
//   - available: the extensions the runtime reported
//   - logger: destination for unavailable-extension warnings (nil to skip logging)
//
// Returns:
//   - ExtensionSet: the extensions that will be enabled
//   - []string: the requested-but-unavailable names
func Negotiate(requested, available ExtensionSet, logger *log.Logger) (ExtensionSet, []string) {
	missing := Difference(requested, available)
	if logger != nil {
		for _, name := range missing {
			logger.Warn("requested extension unavailable", "extension", name)
		}
	}
	return Intersect(requested, available), missing
}
