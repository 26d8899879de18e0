package summary

import (
	"context"
	"errors"
	"fmt"

	"github.com/sitecrew/workforce-backend-go/internal/domain/employee"
	"github.com/sitecrew/workforce-backend-go/internal/domain/user"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/validator"
)

// ResolutionKind tells whether an attendance identity was found.
type ResolutionKind int

const (
	NotFound ResolutionKind = iota
	Resolved
)

// ResolutionSource names the resolver step that produced the identity.
type ResolutionSource string

const (
	SourceUserLink ResolutionSource = "user_link"
	SourceEmail    ResolutionSource = "email"
)

// Resolution is Resolved(IdentityID) or NotFound.
type Resolution struct {
	Kind       ResolutionKind
	IdentityID string
	Source     ResolutionSource
}

type resolveStep struct {
	source ResolutionSource
	lookup func(ctx context.Context, emp employee.Employee) (string, bool, error)
}

// IdentityResolver maps an employee to the login identity its attendance rows
// are keyed by. Steps run in order and the first hit wins.
type IdentityResolver struct {
	steps []resolveStep
}

func NewIdentityResolver(users user.UserRepository) *IdentityResolver {
	return &IdentityResolver{
		steps: []resolveStep{
			{source: SourceUserLink, lookup: byUserLink(users)},
			{source: SourceEmail, lookup: byEmail(users)},
		},
	}
}

// Resolve returns NotFound with a nil error when no step matches. A non-nil
// error means a lookup itself failed.
func (r *IdentityResolver) Resolve(ctx context.Context, emp employee.Employee) (Resolution, error) {
	for _, step := range r.steps {
		id, ok, err := step.lookup(ctx, emp)
		if err != nil {
			return Resolution{}, fmt.Errorf("identity lookup by %s: %w", step.source, err)
		}
		if ok {
			return Resolution{Kind: Resolved, IdentityID: id, Source: step.source}, nil
		}
	}
	return Resolution{Kind: NotFound}, nil
}

// byUserLink follows employees.user_id. A dangling link falls through.
func byUserLink(users user.UserRepository) func(context.Context, employee.Employee) (string, bool, error) {
	return func(ctx context.Context, emp employee.Employee) (string, bool, error) {
		if emp.UserID == nil || validator.IsEmpty(*emp.UserID) {
			return "", false, nil
		}
		u, err := users.GetByID(ctx, *emp.UserID)
		if errors.Is(err, user.ErrUserNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return u.ID, true, nil
	}
}

// byEmail matches the trimmed, lower-cased employee email against users.
func byEmail(users user.UserRepository) func(context.Context, employee.Employee) (string, bool, error) {
	return func(ctx context.Context, emp employee.Employee) (string, bool, error) {
		if emp.Email == nil {
			return "", false, nil
		}
		email := validator.NormalizeEmail(*emp.Email)
		if email == "" {
			return "", false, nil
		}
		u, err := users.GetByNormalizedEmail(ctx, email)
		if errors.Is(err, user.ErrUserNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return u.ID, true, nil
	}
}
