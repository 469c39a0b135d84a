package policy

import "datagate/internal/models"

// conflicts reports whether granting (effect, fields) would be
// incompatible with the policies the user already holds on the same
// table. The rules:
//
//   - allowAll is exclusive: it cannot coexist with any narrower grant
//     on the table, in either direction.
//   - allow vs deny only conflict where their field sets overlap, so
//     disjoint allow/deny grants coexist on one table.
//   - same-effect grants never conflict; duplicates are tolerated, not
//     merged.
//
// A nil field list on a non-allowAll effect is treated as the empty
// set, so it never overlaps anything.
func conflicts(existing []models.AccessPolicy, effect models.Effect, fields models.FieldList) bool {
	for _, p := range existing {
		if (effect == models.EffectAllowAll) != (p.Effect == models.EffectAllowAll) {
			return true
		}
		if effect == models.EffectAllowAll {
			// Both allowAll: same effect, compatible.
			continue
		}
		if effect != p.Effect && overlaps(fields, p.Fields) {
			return true
		}
	}
	return false
}

func overlaps(a, b models.FieldList) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, f := range a {
		seen[f] = struct{}{}
	}
	for _, f := range b {
		if _, ok := seen[f]; ok {
			return true
		}
	}
	return false
}
