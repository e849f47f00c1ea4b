package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is created on the first successful external login and is immutable
// apart from the profile fields refreshed on each login.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GoogleID string             `bson:"googleId" json:"googleId"`
	Email    string             `bson:"email" json:"email"`
	Name     string             `bson:"name" json:"name"`
	Avatar   string             `bson:"avatar" json:"avatar"`
}
