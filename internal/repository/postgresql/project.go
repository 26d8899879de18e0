package postgresql

import (
	"context"
	"fmt"

	"github.com/sitecrew/workforce-backend-go/internal/domain/project"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/database"
)

type projectRepositoryImpl struct {
	db *database.DB
}

func NewProjectRepository(db *database.DB) project.ProjectRepository {
	return &projectRepositoryImpl{db: db}
}

// GetNamesByIDs implements project.ProjectRepository.
func (r *projectRepositoryImpl) GetNamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id::text, name FROM projects WHERE id::text = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get project names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		names[id] = name
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return names, nil
}
