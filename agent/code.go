package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/cmdmesh/core"
	"github.com/hupe1980/cmdmesh/logging"
	"github.com/hupe1980/cmdmesh/model"
)

const codeInstructions = "You are a code generation assistant. " +
	"Produce only source code for the requested task, without surrounding prose."

// CodeAgent turns a task description into source code and persists it via
// the file tool. When no model is configured it emits a placeholder snippet
// so the pipeline stays usable offline.
type CodeAgent struct {
	Base

	model      model.Model
	outputPath string
}

// CodeAgentOptions configures a CodeAgent.
type CodeAgentOptions struct {
	// Logger receives lifecycle logs. Defaults to NoOpLogger.
	Logger logging.Logger
	// Model generates the code. When nil a placeholder snippet is produced.
	Model model.Model
	// OutputPath is the file the generated code is written to.
	OutputPath string
}

// NewCodeAgent constructs a CodeAgent.
func NewCodeAgent(optFns ...func(o *CodeAgentOptions)) *CodeAgent {
	opts := CodeAgentOptions{
		Logger:     logging.NoOpLogger{},
		OutputPath: "generated_code.js",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &CodeAgent{model: opts.Model, outputPath: opts.OutputPath}
	a.Base = NewBase(core.Metadata{
		Name:          "code",
		Description:   "Generates source code from a task description and saves it to a file",
		Version:       "1.0.0",
		Capabilities:  []string{"code_generation", "file_output"},
		RequiredTools: []string{"file"},
	}, a.execute, func(o *BaseOptions) { o.Logger = opts.Logger })
	return a
}

func (a *CodeAgent) execute(ctx context.Context, input string) (string, error) {
	code, err := a.generate(ctx, input)
	if err != nil {
		return "", err
	}

	result, err := a.Tool("file").Execute(ctx, map[string]string{
		"action":  "write",
		"path":    a.outputPath,
		"content": code,
	})
	if err != nil {
		return "", fmt.Errorf("saving generated code: %w", err)
	}
	return fmt.Sprintf("%v\nSaved code to %s", result, a.outputPath), nil
}

func (a *CodeAgent) generate(ctx context.Context, task string) (string, error) {
	if a.model == nil {
		return fmt.Sprintf(`// Auto-generated placeholder code for: %s

function hello() {
    console.log("Hello, world!");
}
`, task), nil
	}

	resp, err := a.model.Generate(ctx, model.Request{
		Instructions: codeInstructions,
		Prompt:       task,
	})
	if err != nil {
		return "", fmt.Errorf("model generation: %w", err)
	}
	return resp.Text, nil
}
