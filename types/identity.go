package types

// Identity is the acting user derived from a verified credential. The zero
// value is Anonymous: no valid credential was presented.
type Identity struct {
	// UserID is the hex form of the user's ObjectID.
	UserID string

	// Username is the user's unique name.
	Username string
}

// Anonymous is the identity of a request without a valid credential.
var Anonymous = Identity{}

// IsAnonymous reports whether the identity carries no verified user.
func (i Identity) IsAnonymous() bool {
	return i.UserID == "" && i.Username == ""
}
