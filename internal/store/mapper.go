package store

import (
	"strings"

	"github.com/MrSnakeDoc/giftlist/internal/domain"
)

// ToGift maps a stored record to the in-memory model.
// Unknown status values are resolved from the guest fields so the
// claimed/claimant invariant holds on every read.
func ToGift(rec Record) domain.Gift {
	g := domain.Gift{
		ID:            rec.ID,
		Name:          rec.Name,
		ImageURL:      rec.ImageURL,
		ClaimantName:  deref(rec.GuestName),
		ClaimantPhone: deref(rec.GuestPhone),
		Category:      deref(rec.Category),
	}

	switch strings.ToLower(strings.TrimSpace(rec.Status)) {
	case StatusSelected, string(domain.StatusClaimed):
		g.Status = domain.StatusClaimed
	case StatusAvailable:
		g.Status = domain.StatusAvailable
	default:
		if g.ClaimantName != "" && g.ClaimantPhone != "" {
			g.Status = domain.StatusClaimed
		} else {
			g.Status = domain.StatusAvailable
		}
	}

	if g.Status == domain.StatusAvailable {
		g.ClaimantName = ""
		g.ClaimantPhone = ""
	}
	return g
}

// ToGifts maps a batch of records, preserving order.
func ToGifts(recs []Record) []domain.Gift {
	gifts := make([]domain.Gift, 0, len(recs))
	for _, rec := range recs {
		gifts = append(gifts, ToGift(rec))
	}
	return gifts
}

// FromGift maps the in-memory model to a record for insertion.
func FromGift(g domain.Gift) Record {
	return Record{
		ID:         g.ID,
		Name:       g.Name,
		ImageURL:   g.ImageURL,
		Status:     WireStatus(g.Status),
		GuestName:  ref(g.ClaimantName),
		GuestPhone: ref(g.ClaimantPhone),
		Category:   ref(g.Category),
	}
}

// WireStatus translates a domain status to the stored enum.
func WireStatus(s domain.Status) string {
	if s == domain.StatusClaimed {
		return StatusSelected
	}
	return StatusAvailable
}

// ClaimUpdate builds the single update issued by a claim.
func ClaimUpdate(name, phone string, guarded bool) Update {
	u := Update{
		Status:     StatusSelected,
		GuestName:  ref(name),
		GuestPhone: ref(phone),
	}
	if guarded {
		u.ExpectStatus = StatusAvailable
	}
	return u
}

// ReleaseUpdate builds the update that returns a gift to available.
func ReleaseUpdate() Update {
	return Update{Status: StatusAvailable}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
