package domain

import "slices"

// appendUnique appends id to ids if not already present.
// Returns false if id was already in the list.
func appendUnique(ids *[]string, id string) bool {
	if slices.Contains(*ids, id) {
		return false
	}
	*ids = append(*ids, id)
	return true
}

// removeValue removes the first occurrence of id from ids.
// Returns false if id was not present.
func removeValue(ids *[]string, id string) bool {
	i := slices.Index(*ids, id)
	if i < 0 {
		return false
	}
	*ids = slices.Delete(*ids, i, i+1)
	return true
}

func containsString(ids []string, id string) bool {
	return slices.Contains(ids, id)
}
