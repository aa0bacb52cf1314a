// Package dialects registers every built-in dialect with the ddl registry.
// Import it for its side effects.
package dialects

import (
	_ "github.com/kadirbelkuyu/dbddl/internal/dialects/generic"
	_ "github.com/kadirbelkuyu/dbddl/internal/dialects/hsqldb"
	_ "github.com/kadirbelkuyu/dbddl/internal/dialects/postgres"
)
