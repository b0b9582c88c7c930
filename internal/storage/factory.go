package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

type Options struct {
	Type     string
	Path     string
	DSN      string
	MaxConns int32
	Logger   *slog.Logger
}

type FactoryFunc func(ctx context.Context, opts Options) (Destination, error)

var factoryFuncs = map[string]FactoryFunc{}

func RegisterFactory(storageType string, fn FactoryFunc) {
	factoryFuncs[storageType] = fn
}

func Types() []string {
	names := make([]string, 0, len(factoryFuncs))
	for name := range factoryFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func New(ctx context.Context, opts Options) (Destination, error) {
	storageType := opts.Type
	if storageType == "" {
		storageType = "sqlite"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	fn, exists := factoryFuncs[storageType]
	if !exists {
		return nil, fmt.Errorf("unsupported storage type: %s (registered: %s)", storageType, strings.Join(Types(), ", "))
	}

	return fn(ctx, opts)
}

// QuoteIdent quotes a SQL identifier. Both backends accept double quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func QuoteIdents(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = QuoteIdent(n)
	}
	return out
}
