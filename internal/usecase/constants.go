package usecase

const (
	// DefaultPageSize matches the boundary layer's transaction page size.
	DefaultPageSize = 20

	// MaxPageSize caps caller-supplied page sizes.
	MaxPageSize = 100
)
