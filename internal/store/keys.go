package store

const (
	// Cart snapshot: ordered list of line items, JSON array.
	KeyCart = "farmstarter:cart"

	// User registry: every account ever created, seeded from the bundled
	// default list on first access.
	KeyUsers = "farmstarter:users"

	// Current session: a single user record. Absent when logged out.
	KeySession = "farmstarter:session"

	// Per-user activity counter: farmstarter:activity:{username}
	KeyActivity = "farmstarter:activity:%s"

	// Consumer dedup marker: farmstarter:dedup:{service}:{event_id}
	KeyDedup = "farmstarter:dedup:%s:%s"
)
