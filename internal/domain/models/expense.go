package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Expense types.
const (
	TypeCredit = "credit"
	TypeDebit  = "debit"
)

// ValidExpenseType reports whether t is one of the two ledger types.
func ValidExpenseType(t string) bool {
	return t == TypeCredit || t == TypeDebit
}

// Expense is a single ledger entry. GroupID is nil for personal
// expenses; when set, the expense belongs to the group context and is
// visible and mutable by every current member. CategoryID may be nil
// for group expenses, or after the referenced category is deleted.
type Expense struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name       string              `bson:"name" json:"name"`
	Note       string              `bson:"note,omitempty" json:"note,omitempty"`
	Type       string              `bson:"type" json:"type"`
	Amount     float64             `bson:"amount" json:"amount"`
	CategoryID *primitive.ObjectID `bson:"category_id,omitempty" json:"category_id,omitempty"`
	UserID     primitive.ObjectID  `bson:"user_id" json:"user_id"`
	GroupID    *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsPersonal reports whether the expense lives outside any group.
func (e Expense) IsPersonal() bool { return e.GroupID == nil }
