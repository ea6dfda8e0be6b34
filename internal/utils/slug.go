package utils

import (
	"strings"

	"github.com/gosimple/slug"
)

// Slugify is deterministic: the same name always yields the same slug.
func Slugify(name string) string {
	return slug.Make(strings.TrimSpace(name))
}
