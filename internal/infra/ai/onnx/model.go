// Package onnx runs the exported room classifier through ONNX Runtime.
package onnx

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/bryanwahyu/tidyroom/internal/domain/analysis"
	"github.com/bryanwahyu/tidyroom/internal/infra/ai"
)

// Options for Open. InputName/OutputName must match the graph.
type Options struct {
	ModelPath      string
	LabelsPath     string
	RuntimeLibrary string // path to libonnxruntime; empty uses the library default
	InputName      string
	OutputName     string
}

// environment is process-global in ONNX Runtime; refs counts open models.
var (
	envMu   sync.Mutex
	envRefs int
)

func acquireEnv(lib string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if envRefs == 0 {
		if lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("init onnxruntime: %w", err)
		}
	}
	envRefs++
	return nil
}

func releaseEnv() error {
	envMu.Lock()
	defer envMu.Unlock()
	envRefs--
	if envRefs == 0 {
		return ort.DestroyEnvironment()
	}
	return nil
}

// Model implements analysis.Model.
type Model struct {
	session *ort.DynamicAdvancedSession
	classes int64
	once    sync.Once
}

// Open loads labels first so the output tensor can be sized, then the graph.
func Open(ctx context.Context, opt Options) (*Model, []analysis.Label, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	labels, err := ai.LoadLabelFile(opt.LabelsPath)
	if err != nil {
		return nil, nil, err
	}
	if err := acquireEnv(opt.RuntimeLibrary); err != nil {
		return nil, nil, err
	}

	in, out := opt.InputName, opt.OutputName
	if in == "" {
		in = "input"
	}
	if out == "" {
		out = "output"
	}
	_, outputs, err := ort.GetInputOutputInfo(opt.ModelPath)
	if err != nil {
		releaseEnv()
		return nil, nil, fmt.Errorf("read model %s: %w", opt.ModelPath, err)
	}
	if err := checkOutputWidth(outputs, out, len(labels)); err != nil {
		releaseEnv()
		return nil, nil, fmt.Errorf("%s vs %s: %w", opt.ModelPath, opt.LabelsPath, err)
	}

	session, err := ort.NewDynamicAdvancedSession(opt.ModelPath, []string{in}, []string{out}, nil)
	if err != nil {
		releaseEnv()
		return nil, nil, fmt.Errorf("open model %s: %w", opt.ModelPath, err)
	}
	return &Model{session: session, classes: int64(len(labels))}, labels, nil
}

// checkOutputWidth compares the class dimension of the named output with the
// label count. A dynamic (non-positive) dimension cannot be checked here and
// is left to Select.
func checkOutputWidth(outputs []ort.InputOutputInfo, name string, labels int) error {
	for _, o := range outputs {
		if o.Name != name {
			continue
		}
		if len(o.Dimensions) == 0 {
			return fmt.Errorf("%w: output %q has no dimensions", analysis.ErrLabelMismatch, name)
		}
		width := o.Dimensions[len(o.Dimensions)-1]
		if width > 0 && width != int64(labels) {
			return fmt.Errorf("%w: output %q has %d classes, label file has %d", analysis.ErrLabelMismatch, name, width, labels)
		}
		return nil
	}
	return fmt.Errorf("%w: model has no output named %q", analysis.ErrLabelMismatch, name)
}

// Predict runs one forward pass. Tensors are per call so concurrent calls are fine.
func (m *Model) Predict(ctx context.Context, s analysis.Sample) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shape := s.Tensor.Shape
	input, err := ort.NewTensor(ort.NewShape(shape[0], shape[1], shape[2], shape[3]), s.Tensor.Data)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, m.classes))
	if err != nil {
		return nil, fmt.Errorf("output tensor: %w", err)
	}
	defer output.Destroy()

	if err := m.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}
	return append([]float32(nil), output.GetData()...), nil
}

func (m *Model) Close() error {
	var err error
	m.once.Do(func() {
		err = m.session.Destroy()
		if rerr := releaseEnv(); err == nil {
			err = rerr
		}
	})
	return err
}
