package users

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	CountAdmins(ctx context.Context) (int, error)
}
