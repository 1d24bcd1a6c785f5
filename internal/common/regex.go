package common

import "regexp"

// MatchRegex compiles pattern and reports whether it matches text. An
// invalid pattern is an error, which also makes this usable for
// validating user-supplied rule patterns up front.
func MatchRegex(pattern, text string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(text), nil
}
