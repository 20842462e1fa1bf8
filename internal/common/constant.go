package common

// BearerScheme is the Authorization header scheme carrying access tokens.
const BearerScheme = "bearer"

// Registration limits enforced before anything reaches storage.
const (
	MaxUsernameLength = 64
	MaxPasswordLength = 256
)
