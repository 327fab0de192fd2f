// internal/app/policy/expensepolicy/expensepolicy.go
package expensepolicy

import (
	"context"

	"github.com/dalemusser/spendhub/internal/app/policy/grouppolicy"
	"github.com/dalemusser/spendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CanMutate reports whether userID may edit or delete the expense.
// The creator always can. A group expense is additionally shared:
// every current member of its group holds full write access, not just
// the author.
func CanMutate(ctx context.Context, db *mongo.Database, e models.Expense, userID primitive.ObjectID) (bool, error) {
	if e.UserID == userID {
		return true, nil
	}
	if e.GroupID == nil {
		return false, nil
	}
	return grouppolicy.IsMember(ctx, db, *e.GroupID, userID)
}

// CanView follows the same rule; nothing in the model grants read
// access more widely than write access.
func CanView(ctx context.Context, db *mongo.Database, e models.Expense, userID primitive.ObjectID) (bool, error) {
	return CanMutate(ctx, db, e, userID)
}
