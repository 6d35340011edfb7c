// Package catalogue derives the display order and pages of the gift
// catalogue and holds its in-memory reflection.
package catalogue

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/MrSnakeDoc/giftlist/internal/domain"
)

// PageSize is the fixed number of gifts per page.
const PageSize = 30

// DefaultLocale is used when no locale is configured.
var DefaultLocale = language.BrazilianPortuguese

// ParseLocale parses a BCP-47 tag, falling back to DefaultLocale.
func ParseLocale(s string) language.Tag {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLocale
	}
	tag, err := language.Parse(s)
	if err != nil {
		return DefaultLocale
	}
	return tag
}

// Sort orders gifts in place: available before claimed, then by name using
// the collation rules of tag. Equal names fall back to ID.
func Sort(gifts []domain.Gift, tag language.Tag) {
	// A Collator is not safe for concurrent use.
	col := collate.New(tag)

	sort.SliceStable(gifts, func(i, j int) bool {
		a, b := gifts[i], gifts[j]
		if ra, rb := rank(a.Status), rank(b.Status); ra != rb {
			return ra < rb
		}
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

// Sorted returns a sorted copy of gifts.
func Sorted(gifts []domain.Gift, tag language.Tag) []domain.Gift {
	out := make([]domain.Gift, len(gifts))
	copy(out, gifts)
	Sort(out, tag)
	return out
}

// Project returns the requested 1-based page of the sorted catalogue and
// the total page count. Out of range pages yield an empty slice; callers
// clamp with ClampPage first.
func Project(gifts []domain.Gift, page int, tag language.Tag) ([]domain.Gift, int) {
	total := TotalPages(len(gifts))

	sorted := Sorted(gifts, tag)
	start := (page - 1) * PageSize
	if page < 1 || start >= len(sorted) {
		return []domain.Gift{}, total
	}
	end := min(start+PageSize, len(sorted))

	return sorted[start:end], total
}

// TotalPages is ceil(n / PageSize).
func TotalPages(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + PageSize - 1) / PageSize
}

// ClampPage bounds page to [1, totalPages]. An empty catalogue has page 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

func rank(s domain.Status) int {
	if s == domain.StatusAvailable {
		return 0
	}
	return 1
}
