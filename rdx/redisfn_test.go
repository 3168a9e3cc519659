package rdx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHelpersWithoutConnection(t *testing.T) {
	Conn = nil
	ctx := context.Background()

	_, err := RdxGet(ctx, "k")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.ErrorIs(t, RdxSet(ctx, "k", "v", time.Minute), ErrDisabled)
	assert.ErrorIs(t, RdxDel(ctx, "k"), ErrDisabled)
	assert.ErrorIs(t, Publish(ctx, "c", []byte("{}")), ErrDisabled)
}

func TestMenuKey(t *testing.T) {
	assert.Equal(t, "menu:r1", MenuKey("r1"))
}
