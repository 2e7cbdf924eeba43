package auth

// Principal is the validated identity a request carries after bearer
// authentication: the token subject plus the authority set embedded at
// issuance. It is a plain value threaded through the request context, never
// a process-wide slot.
type Principal struct {
	Subject     string
	Authorities []string
}

// HasAuthority reports whether the principal carries the given authority.
func (p Principal) HasAuthority(authority string) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// HasRole reports whether the principal carries the role-derived authority
// for the given role name.
func (p Principal) HasRole(name string) bool {
	return p.HasAuthority(RolePrefix + name)
}

// Authenticator turns raw bearer values into principals. It trusts the
// token's embedded claims for the token lifetime and never touches the
// store, which keeps request authentication stateless and CPU-bound.
type Authenticator struct {
	codec *Codec
}

// NewAuthenticator constructs an Authenticator over the given codec.
func NewAuthenticator(codec *Codec) *Authenticator {
	return &Authenticator{codec: codec}
}

// Authenticate validates a bearer token (scheme prefix already stripped)
// and produces the principal for the request. Failures are the codec's
// token errors; the caller must reject the request without running any
// handler logic.
func (a *Authenticator) Authenticate(token string) (Principal, error) {
	subject, authorities, err := a.codec.Validate(token)
	if err != nil {
		return Principal{}, err
	}
	return Principal{Subject: subject, Authorities: authorities}, nil
}
