//go:build !linux && !darwin

package watcher

// Without statfs information the type cannot be determined; fsnotify is
// attempted and polling remains the runtime fallback.
func statfsType(string) FilesystemType {
	return FSTypeUnknown
}
