package redis

const (
	// KeyPrefixGift is the prefix for gift record keys
	KeyPrefixGift = "giftlist:gift:"
	// KeyAllGifts is the key for the set of all gift IDs
	KeyAllGifts = "giftlist:gifts:all"
)

// GiftKey returns the Redis key for a gift by ID
func GiftKey(id string) string {
	return KeyPrefixGift + id
}

// AllGiftsKey returns the key for the set of all gift IDs
func AllGiftsKey() string {
	return KeyAllGifts
}

