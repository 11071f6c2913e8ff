package auth

// Verifier checks a supplied password against the stored credential.
// The demo registry keeps passwords in plain text, so the default
// verifier is an exact, case-sensitive string comparison. A hashed
// scheme can replace it without touching the manager. Do not ship the
// plaintext verifier beyond a demo.
type Verifier interface {
	Verify(stored, supplied string) bool
}

// PlaintextVerifier matches the bundled registry format.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Verify(stored, supplied string) bool {
	return stored == supplied
}
