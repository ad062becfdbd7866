package typeid

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"go.jetify.com/typeid/v2"
)

const (
	PrefixUser     = "user"
	PrefixProject  = "proj"
	PrefixSnapshot = "snap"
	PrefixDocument = "doc"
	PrefixLayer    = "layer"
	PrefixResource = "res"
)

// fallbackSeq backs the last-resort generator. It is process-wide and never
// reset, so ids stay unique even after the layers that used them are gone.
var fallbackSeq atomic.Uint64

// New returns a collision-resistant id with the given prefix. TypeIDs
// (UUIDv7) are preferred; a random UUID and then a monotonic counter are
// used if the generators before them fail.
func New(prefix string) string {
	if id, err := typeid.Generate(prefix); err == nil {
		return id.String()
	}
	if u, err := uuid.NewRandom(); err == nil {
		return prefix + "_" + u.String()
	}
	return prefix + "_" + strconv.FormatUint(fallbackSeq.Add(1), 36)
}

func NewUserID() string     { return New(PrefixUser) }
func NewProjectID() string  { return New(PrefixProject) }
func NewSnapshotID() string { return New(PrefixSnapshot) }
func NewDocumentID() string { return New(PrefixDocument) }
func NewLayerID() string    { return New(PrefixLayer) }
func NewResourceID() string { return New(PrefixResource) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
