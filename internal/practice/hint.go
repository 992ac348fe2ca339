package practice

// NextHint returns the next progressive hint for target given what has been typed.
// The hint is the target's longest prefix shared with input, extended by one more
// character; once input already spells the whole target the full target is returned.
// Both strings are compared in normalized form, rune by rune.
func NextHint(input, target string) string {
	typed := []rune(Normalize(input))
	want := []rune(Normalize(target))

	matched := 0
	for matched < len(typed) && matched < len(want) && typed[matched] == want[matched] {
		matched++
	}

	if matched >= len(want) {
		return string(want)
	}

	return string(want[:matched+1])
}
