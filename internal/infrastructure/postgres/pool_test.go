package postgres

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/trazabilidad-api/pkg/config"
)

func TestPoolConfig_DesdeDBConfig(t *testing.T) {
	cfg := config.DBConfig{
		Host: "db", Port: 5432, User: "app", Password: "secreto", DBName: "trazabilidad", SSLMode: "disable",
		MaxConns: 12, MinConns: 3, LockTimeout: 1500 * time.Millisecond,
	}
	pc, err := poolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(12), pc.MaxConns)
	assert.Equal(t, int32(3), pc.MinConns)
	assert.Equal(t, "1500", pc.ConnConfig.RuntimeParams["lock_timeout"])
	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.Equal(t, "trazabilidad", pc.ConnConfig.Database)
	assert.NotNil(t, pc.AfterConnect)
}

func TestPoolConfig_DatabaseURLTienePrioridad(t *testing.T) {
	pc, err := poolConfig(config.DBConfig{
		DatabaseURL: "postgres://u:p@pg.interno:6543/traza?sslmode=disable",
		Host:        "ignorado",
		MaxConns:    10,
		MinConns:    50,
	})
	require.NoError(t, err)
	assert.Equal(t, "pg.interno", pc.ConnConfig.Host)
	assert.Equal(t, uint16(6543), pc.ConnConfig.Port)
	assert.Equal(t, int32(10), pc.MaxConns)
	assert.Zero(t, pc.MinConns, "MinConns no puede superar MaxConns")
	_, ok := pc.ConnConfig.RuntimeParams["lock_timeout"]
	assert.False(t, ok, "sin LockTimeout no se fija el parámetro")
}

func TestPoolConfig_DSNInvalido(t *testing.T) {
	_, err := poolConfig(config.DBConfig{DatabaseURL: "postgres://u:p@host:notaport/db"})
	assert.Error(t, err)
}

func TestDialIPv4(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		if c, err := ln.Accept(); err == nil {
			c.Close()
		}
	}()

	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := dialIPv4(ctx, "tcp", net.JoinHostPort("localhost", port))
	require.NoError(t, err)
	defer conn.Close()

	addr, ok := conn.RemoteAddr().(*net.TCPAddr)
	require.True(t, ok)
	assert.NotNil(t, addr.IP.To4())
}
