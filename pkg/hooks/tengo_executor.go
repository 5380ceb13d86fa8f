// Package hooks runs user-supplied Tengo scripts at defined points of a
// sync run, letting data pipelines react to downloads without wrapping the
// CLI.
package hooks

import (
	"fmt"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	pkgerrors "github.com/deltaneutral/dnfvault/pkg/errors"
)

// TengoExecutor handles the execution of Tengo hook scripts.
type TengoExecutor struct {
	scripts map[HookType]string
	mutex   sync.RWMutex
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		scripts: make(map[HookType]string),
	}
}

// AddHook registers a hook script.
func (e *TengoExecutor) AddHook(hook Hook) error {
	if hook.Type == "" {
		return pkgerrors.ErrHookTypeEmpty
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.scripts[hook.Type] = hook.Content
	return nil
}

// HasHook checks if a hook of the specified type exists.
func (e *TengoExecutor) HasHook(hookType HookType) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.scripts[hookType]
	return exists
}

// Execute runs the specified hook type with the given context.
func (e *TengoExecutor) Execute(hookType HookType, ctx HookContext) error {
	e.mutex.RLock()
	script, exists := e.scripts[hookType]
	e.mutex.RUnlock()
	if !exists {
		return nil // No script for this hook type
	}

	scriptInstance := tengo.NewScript([]byte(script))
	scriptInstance.SetImports(stdlib.GetModuleMap("fmt", "os", "strings", "times", "text"))

	if err := scriptInstance.Add("fileName", ctx.FileName); err != nil {
		return fmt.Errorf("failed to add fileName to script: %w", err)
	}
	if err := scriptInstance.Add("filePath", ctx.FilePath); err != nil {
		return fmt.Errorf("failed to add filePath to script: %w", err)
	}
	if err := scriptInstance.Add("containerName", ctx.ContainerName); err != nil {
		return fmt.Errorf("failed to add containerName to script: %w", err)
	}
	if err := scriptInstance.Add("containerKind", ctx.ContainerKind); err != nil {
		return fmt.Errorf("failed to add containerKind to script: %w", err)
	}

	for k, v := range ctx.Vars {
		if err := scriptInstance.Add(k, v); err != nil {
			return fmt.Errorf("failed to add variable %q to script: %w", k, err)
		}
	}

	compiled, err := scriptInstance.Run()
	if err != nil {
		return fmt.Errorf("%s: %w: %w", hookType, pkgerrors.ErrHookExecution, err)
	}

	// Scripts report failure by setting an err variable
	errVar := compiled.Get("err")
	if errVar != nil {
		switch v := errVar.Value().(type) {
		case error:
			return fmt.Errorf("%w: %w", pkgerrors.ErrHookScript, v)
		case string:
			if v != "" {
				return fmt.Errorf("%w: %s", pkgerrors.ErrHookScript, v)
			}
		}
	}

	return nil
}
