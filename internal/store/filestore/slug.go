package filestore

import (
	"fmt"
	"regexp"
	"strings"
)

const maxSlugLength = 50

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// slugify converts a title to a filename-friendly slug.
func slugify(title string) string {
	slug := strings.ToLower(title)
	slug = nonAlphanumeric.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > maxSlugLength {
		truncated := slug[:maxSlugLength]
		if slug[maxSlugLength] != '-' {
			if idx := strings.LastIndex(truncated, "-"); idx > 0 {
				truncated = truncated[:idx]
			}
		}
		slug = strings.TrimRight(truncated, "-")
	}
	if slug == "" {
		slug = "task"
	}

	return slug
}

// taskFilename builds "NNN-slug.md" with at least three digits of id.
func taskFilename(id int, title string) string {
	return fmt.Sprintf("%03d-%s.md", id, slugify(title))
}
