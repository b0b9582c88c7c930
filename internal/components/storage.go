package components

import (
	"context"
	"fmt"

	"courtside/internal/storage"
)

type StorageComponent struct {
	opts    storage.Options
	migrate bool
	dest    storage.Destination
}

// NewStorageComponent opens the destination database on Initialize and
// applies migrations when migrate is set.
func NewStorageComponent(opts storage.Options, migrate bool) *StorageComponent {
	return &StorageComponent{
		opts:    opts,
		migrate: migrate,
	}
}

func (c *StorageComponent) Name() string {
	return StorageComponentName
}

func (c *StorageComponent) Dependencies() []string {
	return []string{}
}

func (c *StorageComponent) Validate() error {
	switch c.opts.Type {
	case "", "sqlite":
		if c.opts.Path == "" {
			return fmt.Errorf("storage: database path is required")
		}
	case "postgres":
		if c.opts.DSN == "" {
			return fmt.Errorf("storage: dsn is required for postgres")
		}
	}
	return nil
}

func (c *StorageComponent) Initialize(ctx context.Context) error {
	dest, err := storage.New(ctx, c.opts)
	if err != nil {
		return fmt.Errorf("storage: failed to initialize store: %w", err)
	}

	if c.migrate {
		if err := dest.Migrate(ctx); err != nil {
			dest.Close(ctx)
			return fmt.Errorf("storage: %w", err)
		}
	}

	c.dest = dest
	return nil
}

func (c *StorageComponent) Close(ctx context.Context) error {
	if c.dest == nil {
		return nil
	}
	return c.dest.Close(ctx)
}

func (c *StorageComponent) Destination() storage.Destination {
	return c.dest
}
