package domain

// Status is the availability state of a gift.
type Status string

const (
	StatusAvailable Status = "available"
	StatusClaimed   Status = "claimed"
)

// Gift represents one entry of the registry catalogue.
//
// The in-memory copy is never the source of truth: it is replaced or
// patched only after the catalogue store acknowledged a mutation.
type Gift struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned by the catalogue store on creation.
	ID string `json:"id"`

	// ─────────────────────────────
	// Description
	// ─────────────────────────────

	// Name is the non-empty display text.
	Name string `json:"name"`

	// ImageURL is a remote URL or an inline data URI.
	ImageURL string `json:"imageUrl"`

	// Category is advisory only.
	// Example: Cozinha, Decoração
	Category string `json:"category,omitempty"`

	// ─────────────────────────────
	// Claim state
	// ─────────────────────────────

	// Status is StatusClaimed exactly when both claimant fields are set.
	Status Status `json:"status"`

	// ClaimantName is the guest who claimed the gift.
	ClaimantName string `json:"claimantName,omitempty"`

	// ClaimantPhone is the guest's contact number.
	ClaimantPhone string `json:"claimantPhone,omitempty"`
}

// IsAvailable reports whether the gift can still be claimed.
func (g Gift) IsAvailable() bool {
	return g.Status == StatusAvailable
}

// Claimed returns a copy of g marked as claimed by name/phone.
func (g Gift) Claimed(name, phone string) Gift {
	g.Status = StatusClaimed
	g.ClaimantName = name
	g.ClaimantPhone = phone
	return g
}

// Released returns a copy of g back to available with claimant fields cleared.
func (g Gift) Released() Gift {
	g.Status = StatusAvailable
	g.ClaimantName = ""
	g.ClaimantPhone = ""
	return g
}
