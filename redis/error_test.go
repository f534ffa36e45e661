package redis_test

import (
	"errors"
	"testing"

	"github.com/joomcode/errorx"
	"github.com/mrcece/aedis/redis"
	"github.com/stretchr/testify/assert"
)

func TestWrapTransportErrorClassifiesEOF(t *testing.T) {
	err := redis.Eof.New("peer closed")
	wrapped := redis.WrapTransportError(err)
	assert.True(t, errorx.IsOfType(wrapped, redis.Eof))
}

func TestWrapTransportErrorDefaultsToTransport(t *testing.T) {
	wrapped := redis.WrapTransportError(errors.New("connection reset by peer"))
	assert.True(t, errorx.IsOfType(wrapped, redis.Transport))
	assert.True(t, errorx.HasTrait(wrapped, redis.TraitConnectivity))
}

func TestTimeoutKindsCarryBothTraits(t *testing.T) {
	for _, kind := range []*errorx.Type{redis.ResolveTimeout, redis.ConnectTimeout, redis.IdleTimeout} {
		err := kind.New("timed out")
		assert.True(t, errorx.HasTrait(err, redis.TraitTimeout))
		assert.True(t, errorx.HasTrait(err, redis.TraitConnectivity))
	}
}

func TestOperationAbortedHasNoConnectivityTrait(t *testing.T) {
	err := redis.OperationAborted.New("cancelled")
	assert.False(t, errorx.HasTrait(err, redis.TraitConnectivity))
}
