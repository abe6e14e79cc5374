package session

import "github.com/MrEthical07/goSaaS/jwt"

// Payload is the decoded session claim set.
type Payload = jwt.Payload

// State classifies the cookie seen on a request.
type State uint8

const (
	// Absent means no session cookie was sent.
	Absent State = iota
	// Valid means the token verified and decoded.
	Valid
	// Expired means the signature verified but the envelope exp has passed.
	Expired
	// Tampered covers bad signatures, foreign keys, wrong algorithms and garbage.
	Tampered
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Valid:
		return "valid"
	case Expired:
		return "expired"
	case Tampered:
		return "tampered"
	default:
		return "unknown"
	}
}

// Resolution is the tagged result of reading the session cookie. Payload is set only
// when State is Valid.
type Resolution struct {
	State   State
	Payload Payload
}

// OK reports whether the resolution carries a usable payload.
func (r Resolution) OK() bool {
	return r.State == Valid
}
