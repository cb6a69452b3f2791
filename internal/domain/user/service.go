package user

import "context"

type UserService interface {
	Me(ctx context.Context) (UserResponse, error)
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	Get(ctx context.Context, id string) (UserResponse, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error)
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context, req ListUserRequest) (ListUserResponse, error)
}
