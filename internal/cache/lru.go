package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/devtrace/devtrace/internal/models"
)

// ProjectCache keeps tracking-key lookups off the database on the beacon
// hot path.
type ProjectCache struct {
	c *lru.Cache[string, *models.Project]
}

func New(size int) (*ProjectCache, error) {
	c, err := lru.New[string, *models.Project](size)
	if err != nil {
		return nil, err
	}
	return &ProjectCache{c: c}, nil
}

func (pc *ProjectCache) Get(apiKey string) (*models.Project, bool) {
	return pc.c.Get(apiKey)
}

func (pc *ProjectCache) Set(apiKey string, p *models.Project) {
	pc.c.Add(apiKey, p)
}

func (pc *ProjectCache) Invalidate(apiKey string) {
	pc.c.Remove(apiKey)
}
