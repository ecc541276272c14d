package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, userID, taskID int64) error
	Owner(ctx context.Context, taskID int64) (int64, error)
}
