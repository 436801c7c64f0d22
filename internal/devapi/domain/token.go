package domain

// TokenPair is what the token endpoint returns: a short-lived access
// credential and a longer-lived refresh credential, both signed JWTs.
type TokenPair struct {
	Access  string
	Refresh string
}
