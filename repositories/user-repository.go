package repositories

import (
	"context"
	"fmt"

	"github.com/Mathu0718/online-todo-mathu/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepo struct {
	usersCollection *mongo.Collection
}

func NewUserRepo(usersCollection *mongo.Collection) *UserRepo {
	return &UserRepo{usersCollection: usersCollection}
}

func (r *UserRepo) FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.usersCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %v", err)
	}
	return &user, nil
}

func (r *UserRepo) FindByIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	cursor, err := r.usersCollection.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}
	return users, nil
}

func (r *UserRepo) FindByEmails(ctx context.Context, emails []string) ([]models.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	cursor, err := r.usersCollection.Find(ctx, bson.M{"email": bson.M{"$in": emails}})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users by email: %v", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}
	return users, nil
}

// UpsertExternal finds the user bound to the external identity key and
// creates one on first login. Profile fields are refreshed on every login;
// the id never changes.
func (r *UserRepo) UpsertExternal(ctx context.Context, googleID, email, name, avatar string) (*models.User, error) {
	var user models.User
	err := r.usersCollection.FindOne(ctx, bson.M{"googleId": googleID}).Decode(&user)
	if err == nil {
		update := bson.M{"$set": bson.M{"email": email, "name": name, "avatar": avatar}}
		if _, err := r.usersCollection.UpdateOne(ctx, bson.M{"_id": user.ID}, update); err != nil {
			return nil, fmt.Errorf("failed to refresh user profile: %v", err)
		}
		user.Email, user.Name, user.Avatar = email, name, avatar
		return &user, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to look up user: %v", err)
	}

	user = models.User{
		ID:       primitive.NewObjectID(),
		GoogleID: googleID,
		Email:    email,
		Name:     name,
		Avatar:   avatar,
	}
	if _, err := r.usersCollection.InsertOne(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	return &user, nil
}
