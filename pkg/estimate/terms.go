package estimate

import (
	"fmt"
	"strings"
)

// Terms names the three coefficients the engine works with: the two exposure
// main effects and their product term.
type Terms struct {
	Beta1 string // main effect of exposure 1
	Beta2 string // main effect of exposure 2
	Beta3 string // interaction (product) term
}

// Resolve locates the three coefficients among names by case-insensitive
// substring match on the two exposure fragments. The interaction term is the
// single name matching both fragments; the main effects are the first
// remaining match for each fragment, in coefficient order.
//
// Returns ErrAmbiguousInteraction when zero or several names match both
// fragments, or when a fragment has no main-effect match left over.
func Resolve(names []string, frag1, frag2 string) (Terms, error) {
	f1 := strings.ToLower(frag1)
	f2 := strings.ToLower(frag2)

	var set1, set2 []string
	for _, n := range names {
		ln := strings.ToLower(n)
		if strings.Contains(ln, f1) {
			set1 = append(set1, n)
		}
		if strings.Contains(ln, f2) {
			set2 = append(set2, n)
		}
	}

	in2 := make(map[string]bool, len(set2))
	for _, n := range set2 {
		in2[n] = true
	}
	var shared []string
	for _, n := range set1 {
		if in2[n] {
			shared = append(shared, n)
		}
	}
	if len(shared) != 1 {
		return Terms{}, fmt.Errorf("%w: %d coefficients match both %q and %q",
			ErrAmbiguousInteraction, len(shared), frag1, frag2)
	}
	t := Terms{Beta3: shared[0]}

	for _, n := range set1 {
		if n != t.Beta3 {
			t.Beta1 = n
			break
		}
	}
	for _, n := range set2 {
		if n != t.Beta3 {
			t.Beta2 = n
			break
		}
	}
	if t.Beta1 == "" {
		return Terms{}, fmt.Errorf("%w: no main-effect coefficient matches %q", ErrAmbiguousInteraction, frag1)
	}
	if t.Beta2 == "" {
		return Terms{}, fmt.Errorf("%w: no main-effect coefficient matches %q", ErrAmbiguousInteraction, frag2)
	}
	return t, nil
}
