package registry

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/impactd/internal/project"
)

// IDPolicy decides how /add picks the next project ID.
type IDPolicy string

const (
	// IDSequence issues one more than the highest ID seen since load.
	// IDs are not reused within a run.
	IDSequence IDPolicy = "sequence"

	// IDLegacy issues live count + 1. After a deletion this can hit an
	// existing ID, which is reported as a duplicate instead of overwriting.
	// The count does not move on a duplicate, so every later /add gets the
	// same answer until another project is deleted.
	IDLegacy IDPolicy = "legacy"
)

// ParseIDPolicy validates a policy name. Empty selects IDSequence.
func ParseIDPolicy(s string) (IDPolicy, error) {
	switch p := IDPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return IDSequence, nil
	case IDSequence, IDLegacy:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported id policy %q", s)
	}
}

// idAllocator tracks the high-water mark for IDSequence.
type idAllocator struct {
	policy    IDPolicy
	highWater int
}

func (a *idAllocator) next(store *project.Store) int {
	if a.policy == IDLegacy {
		return store.Len() + 1
	}
	return a.highWater + 1
}

func (a *idAllocator) observe(id int) {
	if id > a.highWater {
		a.highWater = id
	}
}
