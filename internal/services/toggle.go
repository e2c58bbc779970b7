package services

// ToggleMember implements the symmetric set toggle shared by follows and
// likes: if member is in set it is removed, otherwise it is appended once.
// Membership is an exact, case-sensitive string match and insertion order is
// preserved. The second return reports whether the member was added.
//
// Applying the toggle twice with the same member returns the original set.
func ToggleMember(set []string, member string) ([]string, bool) {
	for i, existing := range set {
		if existing == member {
			result := make([]string, 0, len(set)-1)
			result = append(result, set[:i]...)
			result = append(result, set[i+1:]...)
			return result, false
		}
	}

	result := make([]string, 0, len(set)+1)
	result = append(result, set...)
	result = append(result, member)
	return result, true
}
