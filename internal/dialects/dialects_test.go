package dialects_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirbelkuyu/dbddl/internal/ddl"
	_ "github.com/kadirbelkuyu/dbddl/internal/dialects"
	"github.com/kadirbelkuyu/dbddl/internal/sqltypes"
)

func TestBuiltinsRegistered(t *testing.T) {
	assert.Equal(t, []string{"generic", "hsqldb", "postgres"}, ddl.List())
}

func TestEveryCodeResolvesInEveryDialect(t *testing.T) {
	for _, key := range ddl.List() {
		d := ddl.MustGet(key)
		t.Run(d.Name(), func(t *testing.T) {
			require.NoError(t, d.Validate())
			for _, code := range sqltypes.All() {
				desc, err := d.Registry().Resolve(code)
				require.NoErrorf(t, err, "%s has no descriptor for %s", d.Name(), code)
				assert.Equal(t, code, desc.Code)
				assert.NotEmpty(t, desc.PhysicalName)
			}
		})
	}
}
