package beatstore

import "github.com/stereohaus/beatstore/id"

// ID is the primary identifier type for all Beatstore entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
