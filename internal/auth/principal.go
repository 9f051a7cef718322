package auth

// Principal is the resolved identity handed to the downstream authorization
// server. Authorities stay empty here: granting them is not this gateway's
// job.
type Principal struct {
	UserID      string
	Password    string // hash; populated only on the username path
	Enabled     bool
	Authorities []string
}

func newPrincipal(userID, passwordHash string) *Principal {
	return &Principal{
		UserID:      userID,
		Password:    passwordHash,
		Enabled:     true,
		Authorities: []string{},
	}
}
