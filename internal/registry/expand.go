package registry

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"

	"github.com/flarebyte/seshat-toolkit/internal/config"
	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

// Expand flattens the declarative entry list into the two pipeline sets:
// resolved records are fetched and deployed, included records were reached
// only through include pointers and stay eligible for local hooks. A name is
// resolved at most once per run; cycles in registry includes are tolerated.
// Lookup misses and constraint violations become failed included records so
// the final report enumerates them without aborting the run.
func Expand(entries []config.Entry, store Store) (resolved, included []toolbox.Record) {
	x := expander{store: store, seen: map[string]bool{}}
	for _, e := range entries {
		if e.Include == "" {
			x.addResolved(e.Record())
			continue
		}
		x.walk(e.Include, e.Version)
	}
	return x.resolved, x.included
}

type expander struct {
	store    Store
	seen     map[string]bool
	resolved []toolbox.Record
	included []toolbox.Record
}

func (x *expander) addResolved(rec toolbox.Record) {
	if x.seen[rec.Name] {
		return
	}
	x.seen[rec.Name] = true
	x.resolved = append(x.resolved, rec)
}

func (x *expander) addIncluded(rec toolbox.Record) {
	if x.seen[rec.Name] {
		return
	}
	x.seen[rec.Name] = true
	x.included = append(x.included, rec)
}

func (x *expander) walk(name, constraint string) {
	if x.seen[name] {
		return
	}
	def, err := x.store.Lookup(name)
	if err != nil {
		x.addIncluded(toolbox.Record{
			Name:    name,
			Status:  toolbox.StatusFetchFailed,
			Message: err.Error(),
		})
		return
	}
	if msg := checkConstraint(constraint, def.Version); msg != "" {
		x.addIncluded(toolbox.Record{
			Name:    name,
			Status:  toolbox.StatusFetchFailed,
			Message: msg,
		})
		return
	}
	if def.Source != "" {
		x.addResolved(def.Record)
	} else {
		x.addIncluded(def.Record)
	}
	for _, child := range def.Includes {
		x.walk(child, "")
	}
}

// checkConstraint returns a failure message when a declared constraint is not
// met by the definition's version. Definitions without a version satisfy any
// constraint, matching the no-version-solving scope of the fetch layer.
func checkConstraint(constraint, version string) string {
	if constraint == "" || version == "" {
		return ""
	}
	c, err := goversion.NewConstraint(constraint)
	if err != nil {
		return fmt.Sprintf("invalid version constraint %q", constraint)
	}
	v, err := goversion.NewVersion(version)
	if err != nil {
		return fmt.Sprintf("invalid registry version %q", version)
	}
	if !c.Check(v) {
		return fmt.Sprintf("version %s does not satisfy constraint %q", version, constraint)
	}
	return ""
}
