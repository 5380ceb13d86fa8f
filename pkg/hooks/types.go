package hooks

// HookType represents the type of hook.
type HookType string

// Supported hook types.
const (
	PostDownload HookType = "post-download"
	PostSync     HookType = "post-sync"
)

// Hook represents a hook script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext contains information passed to hook scripts.
type HookContext struct {
	FileName      string
	FilePath      string
	ContainerName string
	ContainerKind string
	Vars          map[string]interface{}
}

// Manager defines the interface for running hooks.
type Manager interface {
	// Execute runs the specified hook type with the given context
	Execute(hookType HookType, ctx HookContext) error

	// AddHook registers a hook script
	AddHook(hook Hook) error

	// HasHook checks if a hook of the specified type exists
	HasHook(hookType HookType) bool
}
