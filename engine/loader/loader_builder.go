package loader

import "log/slog"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithImagesPrefix sets the path, relative to the base, that image identifiers are resolved
// against.
//
// Parameters:
//   - prefix: the images directory or URL path
//
// Returns:
//   - LoaderBuilderOption: a function that applies the prefix to a loader
func WithImagesPrefix(prefix string) LoaderBuilderOption {
	return func(l *loader) {
		l.imagesPrefix = prefix
	}
}

// WithMaxTextureDimension caps the longest side of decoded textures. Larger images are
// downscaled on decode.
//
// Parameters:
//   - px: the maximum width or height in pixels
//
// Returns:
//   - LoaderBuilderOption: a function that applies the cap to a loader
func WithMaxTextureDimension(px int) LoaderBuilderOption {
	return func(l *loader) {
		if px > 0 {
			l.maxDimension = px
		}
	}
}

// WithMemoryAssets serves every resource from the given map instead of the base location.
//
// Parameters:
//   - files: resource bytes keyed by name relative to the base
//
// Returns:
//   - LoaderBuilderOption: a function that switches the loader to the memory backend
func WithMemoryAssets(files map[string][]byte) LoaderBuilderOption {
	return func(l *loader) {
		if files == nil {
			files = map[string][]byte{}
		}
		l.memory = files
	}
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}
