package service

import (
	"regexp"
	"strconv"
	"strings"
)

const fallbackSlug = "post"

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases the input, collapses non-alphanumeric runs into a
// single hyphen and trims leading/trailing hyphens. Empty results become "post".
func Slugify(value string) string {
	if slug := slugify(value); slug != "" {
		return slug
	}
	return fallbackSlug
}

func slugify(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	return strings.Trim(nonSlugChars.ReplaceAllString(lowered, "-"), "-")
}

// slugCandidate 返回第 n 个候选 slug：0 为原始值，其后依次追加 -1, -2 …
func slugCandidate(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
