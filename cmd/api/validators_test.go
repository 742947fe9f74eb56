package api

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFuture(t *testing.T) {
	fixed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return fixed }
	t.Cleanup(func() { nowFunc = time.Now })

	v := validator.New()
	require.NoError(t, RegisterValidators(v))

	type request struct {
		At time.Time `validate:"future"`
	}

	assert.NoError(t, v.Struct(request{At: fixed.Add(time.Minute)}))
	assert.Error(t, v.Struct(request{At: fixed}))
	assert.Error(t, v.Struct(request{At: fixed.Add(-time.Minute)}))
}
