package arena

import "errors"

// Construction-time errors. Allocate/Free never return an error — capacity
// exhaustion and unsupported sizes are both reported as a nil payload, per
// the package's failure-propagation policy (see the package documentation);
// these are the only
// error-shaped outcomes the package has, and they are all raised before an
// allocator is ever used.
var (
	errInvalidObjectSize = errors.New("arena: object size must be at least 1 byte")
	errInvalidBlockSize  = errors.New("arena: block size must be at least 1 byte")
	errDescriptorOrder   = errors.New("arena: size class descriptors must be in non-decreasing block size order")
	errNoDescriptors     = errors.New("arena: segregated heap needs at least one size class")
)
