package fsutil

// File and directory permission constants.
// These follow standard Unix permission conventions and are used consistently
// throughout the application to ensure consistent file and directory permissions.
const (
	// Default file modes.
	FileModeDefault = 0o644 // -rw-r--r--: Default for regular files
	FileModeSecure  = 0o640 // -rw-r----: For sensitive files (owner read/write, group read)

	// Directory modes.
	DirModeDefault = 0o755 // drwxr-xr-x: Default for directories
	DirModeSecure  = 0o750 // drwxr-x---: For sensitive directories
	DirModePrivate = 0o700 // drwx------: For private directories (owner only)
)
