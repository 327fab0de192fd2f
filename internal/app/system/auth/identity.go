package auth

import (
	"net/http"

	"github.com/dalemusser/spendhub/internal/app/system/httperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectID parses the identity's user ID into a Mongo ObjectID.
// Token and session IDs are hex ObjectIDs written by our own code,
// so a parse failure means a forged or corrupted credential.
func (u *SessionUser) ObjectID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(u.ID)
}

// RequesterID returns the signed-in caller's ObjectID, writing a 401
// and returning ok=false when there is no usable identity. Handlers
// behind RequireSignedIn still call this to get the parsed ID.
func RequesterID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	su, ok := CurrentUser(r)
	if !ok {
		httperr.Unauthenticated(w, "authentication required")
		return primitive.NilObjectID, false
	}
	id, err := su.ObjectID()
	if err != nil {
		httperr.Unauthenticated(w, "authentication required")
		return primitive.NilObjectID, false
	}
	return id, true
}
