package model

// AdminSession is the verified identity behind a moderation request. It is
// built by the auth middleware from the ID token and passed explicitly to
// every moderation operation; services never consult ambient state to decide
// whether a caller is an admin.
type AdminSession struct {
	UID   string
	Email string
	Admin bool
}

// EnrichedTransaction joins a purchase with its resolved references for the
// admin table. Offer, Buyer and Seller are nil when the lookup found
// nothing; display falls back to the raw ids.
type EnrichedTransaction struct {
	Purchase Purchase
	Offer    *Offer
	Buyer    *AuthUser
	Seller   *AuthUser
}
