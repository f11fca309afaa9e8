package entity

// User is the aggregate root for the credential vault. Username is the
// global primary key; the row is created by registration and never mutated
// or deleted afterwards.
//
// PasswordHash is an opaque salted bcrypt hash. The plaintext password never
// leaves the registration/verification path.
type User struct {
	Username     string
	PasswordHash string
	Email        string
}
