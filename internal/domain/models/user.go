package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Credential kinds. Exactly one identity mechanism is set per user:
// a local bcrypt hash or a Google account reference.
const (
	CredentialLocal  = "local"
	CredentialGoogle = "google"
)

// Credential is the tagged identity variant embedded on User.
// Kind selects which of the two fields is meaningful; the other is
// left empty and omitted from the document.
type Credential struct {
	Kind         string `bson:"kind" json:"kind"`
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`
	GoogleID     string `bson:"google_id,omitempty" json:"-"`
}

// User represents an account holder. Users are created at registration
// or on first Google login and are never deleted.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Credential Credential         `bson:"credential" json:"-"`
	Picture    string             `bson:"picture,omitempty" json:"picture,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsLocal reports whether the user signs in with a password.
func (u User) IsLocal() bool { return u.Credential.Kind == CredentialLocal }

// IsGoogle reports whether the user signs in through Google.
func (u User) IsGoogle() bool { return u.Credential.Kind == CredentialGoogle }
