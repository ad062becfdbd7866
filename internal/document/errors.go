package document

import "errors"

var (
	ErrLayerNotFound    = errors.New("layer not found")
	ErrNotContainer     = errors.New("layer cannot have children")
	ErrCycle            = errors.New("layer cannot be moved into its own subtree")
	ErrRootLayer        = errors.New("root frame cannot be moved or removed")
	ErrUnknownLayerType = errors.New("unknown layer type")
	ErrInvalidPatch     = errors.New("invalid layer patch")
)
