package mcq

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.Complete())
	assert.Empty(t, o.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	o := NewOptions()
	o.Store = "faiss"
	o.TopK = 0
	o.ChunkOverlap = o.ChunkSize

	errs := o.Validate()
	assert.Len(t, errs, 3)
}

func TestAddFlagsUsesPrefix(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs, "server")

	require.NoError(t, fs.Parse([]string{"--server.mcq.top-k=7"}))
	assert.Equal(t, 7, o.TopK)
}
