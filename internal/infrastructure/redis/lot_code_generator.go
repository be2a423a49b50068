// Package redis implementa la secuencia de códigos de lote compartida entre instancias sobre Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/codegen"
)

// sequenceTTL conserva la llave del día un poco más de 24h para tolerar desfases de reloj.
const sequenceTTL = 48 * time.Hour

var _ ports.LotCodeGenerator = (*LotCodeGenerator)(nil)

// LotCodeGenerator usa INCR sobre {prefijo}:seq:{AAAAMMDD}; la secuencia reinicia cada día.
type LotCodeGenerator struct {
	client goredis.UniversalClient
	prefix string
}

// NewLotCodeGenerator construye el generador sobre un cliente ya conectado.
func NewLotCodeGenerator(client goredis.UniversalClient, prefix string) *LotCodeGenerator {
	return &LotCodeGenerator{client: client, prefix: codegen.Normalize(prefix)}
}

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (g *LotCodeGenerator) Next(ctx context.Context, at time.Time) (string, error) {
	key := fmt.Sprintf("%s:seq:%s", g.prefix, at.UTC().Format("20060102"))

	pipe := g.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, sequenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("next lot code: %w", err)
	}
	return codegen.Format(g.prefix, at, incr.Val()), nil
}
