package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/oneconcern/crane/pkg/model"
	"github.com/spf13/afero"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"
)

const (
	// DefaultFile is the name of the config file at the root of a solution
	DefaultFile = ".crane"

	// DefaultVariable is the name of the variable holding component descriptors
	DefaultVariable = "deps"
)

// Parser evaluates config files into component descriptors.
//
// A Parser holds no per-call state and may be shared.
type Parser struct {
	fs     afero.Fs
	logger *zap.Logger
}

// Option configures a Parser
type Option func(*Parser)

// WithFs sets the filesystem to read config files from
func WithFs(fs afero.Fs) Option {
	return func(p *Parser) {
		if fs != nil {
			p.fs = fs
		}
	}
}

// WithLogger sets a logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewParser builds a config parser, reading from the OS filesystem by default
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		fs:     afero.NewOsFs(),
		logger: zap.NewNop(),
	}
	for _, apply := range opts {
		apply(p)
	}
	return p
}

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Parse evaluates a config file and decodes the dict held by variable into descriptors.
func (p *Parser) Parse(path, variable string) ([]model.Descriptor, error) {
	p.logger.Debug("parsing components", zap.String("file", path), zap.String("variable", variable))

	src, err := afero.ReadFile(p.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound.Wrapf("%s", path)
		}
		return nil, ErrParse.Wrap(err)
	}

	thread := &starlark.Thread{
		Name: path,
		Print: func(_ *starlark.Thread, msg string) {
			p.logger.Info(msg, zap.String("file", path))
		},
	}
	globals, err := starlark.ExecFileOptions(fileOptions, thread, path, src, nil)
	if err != nil {
		if evalErr, ok := err.(*starlark.EvalError); ok {
			return nil, ErrParse.Wrapf("%s", evalErr.Backtrace())
		}
		return nil, ErrParse.Wrap(err)
	}

	value, ok := globals[variable]
	if !ok {
		return nil, ErrVariable.Wrapf("%s does not define %q", path, variable)
	}
	dict, ok := value.(*starlark.Dict)
	if !ok {
		return nil, ErrVariable.Wrapf("%s: %q must be a dict, got %s", path, variable, value.Type())
	}

	descriptors := make([]model.Descriptor, 0, dict.Len())
	for _, item := range dict.Items() {
		key, ok := starlark.AsString(item[0])
		if !ok {
			return nil, ErrVariable.Wrapf("%s: component names must be strings, got %s", path, item[0].Type())
		}
		attrs, ok := item[1].(*starlark.Dict)
		if !ok {
			return nil, ErrFieldType.Wrapf("%s: attributes of %q must be a dict, got %s", path, key, item[1].Type())
		}

		d, err := p.decode(key, attrs)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}

	p.logger.Debug("loaded components", zap.String("file", path), zap.Int("count", len(descriptors)))
	return descriptors, nil
}

func (p *Parser) decode(name string, attrs *starlark.Dict) (model.Descriptor, error) {
	raw, err := toGo(attrs)
	if err != nil {
		return model.Descriptor{}, ErrFieldType.Wrapf("%s: %v", name, err)
	}

	var (
		d  model.Descriptor
		md mapstructure.Metadata
	)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:   &d,
		Metadata: &md,
		TagName:  "mapstructure",
	})
	if err != nil {
		return model.Descriptor{}, err
	}
	if err = decoder.Decode(raw); err != nil {
		return model.Descriptor{}, ErrFieldType.Wrapf("%s: %v", name, err)
	}
	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		p.logger.Debug("ignoring unknown attributes", zap.String("component", name), zap.Strings("attributes", md.Unused))
	}

	d.Name = name
	if err = d.Validate(); err != nil {
		return model.Descriptor{}, err
	}
	return d, nil
}

// toGo converts a starlark value into plain go values
func toGo(v starlark.Value) (interface{}, error) {
	switch x := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(x), nil
	case starlark.String:
		return string(x), nil
	case starlark.Int:
		i, ok := x.Int64()
		if !ok {
			return nil, fmt.Errorf("integer %v out of range", x)
		}
		return i, nil
	case starlark.Float:
		return float64(x), nil
	case *starlark.List:
		return iterableToGo(x)
	case starlark.Tuple:
		return iterableToGo(x)
	case *starlark.Dict:
		m := make(map[string]interface{}, x.Len())
		for _, item := range x.Items() {
			k, ok := starlark.AsString(item[0])
			if !ok {
				return nil, fmt.Errorf("attribute names must be strings, got %s", item[0].Type())
			}
			val, err := toGo(item[1])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			m[k] = val
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", v.Type())
	}
}

func iterableToGo(x starlark.Indexable) ([]interface{}, error) {
	out := make([]interface{}, 0, x.Len())
	for i := 0; i < x.Len(); i++ {
		val, err := toGo(x.Index(i))
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}
