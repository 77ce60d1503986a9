package postgres

import (
	"context"
	"time"

	"github.com/danmelak/shopcart/internal/domain/job"
	"github.com/danmelak/shopcart/internal/domain/user"
	"github.com/danmelak/shopcart/internal/jobs"
)

// SignupRepo creates the user row and its welcome-notification job in one
// transaction: either both land or neither does.
type SignupRepo struct {
	users *UsersRepo
	jobs  *JobsRepo
}

func NewSignupRepo(users *UsersRepo, jobsRepo *JobsRepo) *SignupRepo {
	return &SignupRepo{users: users, jobs: jobsRepo}
}

func (r *SignupRepo) Create(ctx context.Context, name, email, passwordHash string) (user.User, error) {
	tx, err := r.users.BeginTx(ctx)

	if err != nil {
		return user.User{}, err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	u, err := r.users.CreateTx(ctx, tx, name, email, passwordHash)

	if err != nil {
		return user.User{}, err
	}

	payload := jobs.WelcomeNotificationPayload{
		UserID:      u.ID,
		Email:       u.Email,
		Name:        u.Name,
		RequestedAt: time.Now().UTC(),
	}

	raw, err := payload.JSON()

	if err != nil {
		return user.User{}, err
	}

	// idempotency key: one welcome job per user, ever
	key := "welcome:" + u.ID
	uid := u.ID

	_, err = r.jobs.CreateTx(ctx, tx, job.CreateRequest{
		Type:           jobs.TypeWelcomeNotification,
		Payload:        raw,
		RunAt:          time.Now().UTC(),
		MaxAttempts:    10,
		IdempotencyKey: &key,
		UserID:         &uid,
	})

	if err != nil {
		// duplicate idempotency key inside same tx; rare, but safe to accept
		if !IsUniqueViolation(err) {
			return user.User{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return user.User{}, err
	}

	return u, nil
}
