package project

import "context"

type ProjectRepository interface {
	// GetNamesByIDs resolves project names. Unknown IDs are absent from the map.
	GetNamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}
