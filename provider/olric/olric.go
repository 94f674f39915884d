// Package olric stores entries in an Olric distributed map, for deployments
// that already run an Olric cluster instead of Redis.
package olric

import (
	"context"
	"errors"
	"fmt"
	"time"

	olriclib "github.com/olric-data/olric"

	pr "github.com/unkn0wn-root/asidecache/provider"
)

const defaultDMap = "asidecache"

type Provider struct {
	client olriclib.Client
	dm     olriclib.DMap
}

var (
	_ pr.Provider = (*Provider)(nil)
	_ pr.Pinger   = (*Provider)(nil)
)

type Config struct {
	Servers []string // e.g. ["localhost:3320"]; empty => localhost:3320
	DMap    string   // empty => "asidecache"
}

func New(cfg Config) (*Provider, error) {
	servers := cfg.Servers
	if len(servers) == 0 {
		servers = []string{"localhost:3320"}
	}
	name := cfg.DMap
	if name == "" {
		name = defaultDMap
	}

	client, err := olriclib.NewClusterClient(servers)
	if err != nil {
		return nil, fmt.Errorf("olric provider: cluster client: %w", err)
	}
	dm, err := client.NewDMap(name)
	if err != nil {
		_ = client.Close(context.Background())
		return nil, fmt.Errorf("olric provider: dmap %q: %w", name, err)
	}
	return NewWithDMap(client, dm), nil
}

// NewWithDMap wraps an existing client and map. Close closes client.
func NewWithDMap(client olriclib.Client, dm olriclib.DMap) *Provider {
	return &Provider{client: client, dm: dm}
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	gr, err := p.dm.Get(ctx, key)
	if errors.Is(err, olriclib.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var b []byte
	if err := gr.Scan(&b); err != nil {
		return nil, false, fmt.Errorf("olric provider: scan %q: %w", key, err)
	}
	return b, true, nil
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	var opts []olriclib.PutOption
	if ttl > 0 {
		opts = append(opts, olriclib.EX(ttl))
	}
	if err := p.dm.Put(ctx, key, value, opts...); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(ctx context.Context, key string) error {
	_, err := p.dm.Delete(ctx, key)
	if err != nil && !errors.Is(err, olriclib.ErrKeyNotFound) {
		return err
	}
	return nil
}

// Ping probes the cluster with a lookup of a key that is never written.
func (p *Provider) Ping(ctx context.Context) error {
	_, err := p.dm.Get(ctx, "__asidecache_ping__")
	if err != nil && !errors.Is(err, olriclib.ErrKeyNotFound) {
		return err
	}
	return nil
}

func (p *Provider) Close(ctx context.Context) error {
	if p.client == nil {
		return nil
	}
	return p.client.Close(ctx)
}
