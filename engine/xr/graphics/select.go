package graphics

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/xr/openxr"
	"github.com/charmbracelet/log"
)

// Usable reports whether every extension the backend requires is available.
func Usable(b Backend, available openxr.ExtensionSet) bool {
	return openxr.IsSubset(b.RequiredExtensions(), available)
}

// SelectBackend picks the backend a new instance will be bound to.
// Walking the preference order, the first kind with a usable candidate wins, so
// a preferred but unusable backend is skipped rather than failing selection.
// Without preferences the first usable candidate wins.
//
// Parameters:
//   - available: the extensions the runtime reports
//   - preferred: backend kinds in preference order, may be empty
//   - candidates: the compiled-in backends
//   - logger: receives the selection outcome (nil to skip logging)
//
// Returns:
//   - Backend: the selected backend
//   - error: ErrNoAvailableBackend if nothing matches
func SelectBackend(available openxr.ExtensionSet, preferred []BackendKind, candidates []Backend, logger *log.Logger) (Backend, error) {
	usable := make([]Backend, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if Usable(c, available) {
			usable = append(usable, c)
		} else if logger != nil {
			logger.Debug("backend unusable", "backend", c.Kind(), "missing", openxr.Difference(c.RequiredExtensions(), available))
		}
	}

	pick := func(b Backend) (Backend, error) {
		if logger != nil {
			logger.Info("selected graphics backend", "backend", b.Kind())
		}
		return b, nil
	}

	if len(preferred) == 0 {
		if len(usable) > 0 {
			return pick(usable[0])
		}
		return nil, ErrNoAvailableBackend
	}
	for _, kind := range preferred {
		for _, b := range usable {
			if b.Kind() == kind {
				return pick(b)
			}
		}
	}
	return nil, ErrNoAvailableBackend
}

// RequiredExtensionsOf unions the required extensions of every candidate.
// The instance requests these so that whichever backend is selected can be enabled.
func RequiredExtensionsOf(candidates []Backend) openxr.ExtensionSet {
	var out openxr.ExtensionSet
	for _, c := range candidates {
		if c != nil {
			out = openxr.Union(out, c.RequiredExtensions())
		}
	}
	return out
}
