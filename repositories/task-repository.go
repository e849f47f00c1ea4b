package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Mathu0718/online-todo-mathu/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type TaskRepo struct {
	tasksCollection *mongo.Collection
}

func NewTaskRepo(tasksCollection *mongo.Collection) *TaskRepo {
	return &TaskRepo{tasksCollection: tasksCollection}
}

func (r *TaskRepo) Insert(ctx context.Context, task *models.Task) error {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	result, err := r.tasksCollection.InsertOne(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to create task: %v", err)
	}
	task.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *TaskRepo) FindByID(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.tasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to retrieve task: %v", err)
	}
	return &task, nil
}

// Replace writes the full task document back, last-write-wins.
func (r *TaskRepo) Replace(ctx context.Context, task *models.Task) error {
	result, err := r.tasksCollection.ReplaceOne(ctx, bson.M{"_id": task.ID}, task)
	if err != nil {
		return fmt.Errorf("failed to update task: %v", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, taskID primitive.ObjectID) error {
	result, err := r.tasksCollection.DeleteOne(ctx, bson.M{"_id": taskID})
	if err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrTaskNotFound
	}
	return nil
}

// FindForUser returns every task the user owns or collaborates on.
func (r *TaskRepo) FindForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	filter := bson.M{"$or": []bson.M{
		{"owner": userID},
		{"collaborators.user": userID},
	}}

	cursor, err := r.tasksCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	return tasks, nil
}

// FindDueBetween returns tasks whose due date falls inside [from, to] and
// whose stored status matches. The scanner deliberately queries stored
// status, not the display override.
func (r *TaskRepo) FindDueBetween(ctx context.Context, from, to time.Time, status models.TaskStatus) ([]models.Task, error) {
	filter := bson.M{
		"dueDate": bson.M{"$gte": from, "$lte": to},
		"status":  status,
	}

	cursor, err := r.tasksCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve due tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode due tasks: %v", err)
	}
	return tasks, nil
}
