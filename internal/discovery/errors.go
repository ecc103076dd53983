package discovery

import "errors"

// ErrConfigInvalid indicates a discovered or explicitly configured dprint
// configuration file failed to parse. The owning folder is excluded from the
// routing table; sibling folders are unaffected.
var ErrConfigInvalid = errors.New("invalid dprint configuration")
