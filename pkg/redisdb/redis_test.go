package redisdb

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(Config{Addr: mr.Addr()})
	require.NoError(t, err)
	Close(client)
}

func TestConnectRequiresAddress(t *testing.T) {
	_, err := Connect(Config{})
	assert.Error(t, err)
}

func TestConnectUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = Connect(Config{Addr: addr})
	assert.Error(t, err)
}
