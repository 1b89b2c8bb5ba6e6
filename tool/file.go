package tool

import (
	"context"
	"fmt"
	"os"

	"github.com/hupe1980/cmdmesh/core"
	"github.com/hupe1980/cmdmesh/logging"
)

// FileTool reads and writes files on the local filesystem. It accepts
// action=read|write plus path and, for writes, content.
type FileTool struct {
	Base

	writeMode os.FileMode
}

// FileToolOptions configures a FileTool.
type FileToolOptions struct {
	// Logger receives lifecycle logs. Defaults to NoOpLogger.
	Logger logging.Logger
	// WriteMode is the permission mode for created files.
	WriteMode os.FileMode
}

// NewFileTool constructs a FileTool.
func NewFileTool(optFns ...func(o *FileToolOptions)) *FileTool {
	opts := FileToolOptions{
		Logger:    logging.NoOpLogger{},
		WriteMode: 0o644,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	t := &FileTool{}
	t.writeMode = opts.WriteMode
	t.Base = NewBase(core.Metadata{
		Name:        "file",
		Description: "Reads and writes files on the local filesystem",
		Version:     "1.0.0",
		Parameters: map[string]core.Parameter{
			"action":  {Type: "string", Required: true, Description: "Operation to perform (read, write)"},
			"path":    {Type: "string", Required: true, Description: "Target file path"},
			"content": {Type: "string", Required: false, Description: "Content to write (write only)"},
		},
		RequiredPermissions: []string{"filesystem"},
		Tags:                []string{"filesystem", "io"},
	}, t.execute, func(o *BaseOptions) { o.Logger = opts.Logger })
	return t
}

func (t *FileTool) execute(_ context.Context, args map[string]string) (any, error) {
	action := args["action"]
	path := args["path"]
	content, hasContent := args["content"]

	switch {
	case action == "write" && path != "" && hasContent:
		if err := os.WriteFile(path, []byte(content), t.writeMode); err != nil {
			return nil, NewToolError("file", err.Error(), CodeExecutionError)
		}
		return fmt.Sprintf("Wrote %d bytes to %s", len(content), path), nil

	case action == "read" && path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, NewToolError("file", err.Error(), CodeExecutionError)
		}
		return string(data), nil

	default:
		return "Invalid arguments. Try: action=write path=... content=... or action=read path=...", nil
	}
}
