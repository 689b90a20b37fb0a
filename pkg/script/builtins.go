package script

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
)

// Session is the slice of the viewer that scripts may drive. The root
// application implements it over the pipeline and mesh generators.
type Session interface {
	LoadFile(path string) error
	SetMeshVisible(show bool)
	SetContourValue(v float64)
	SetRepresentation(target, mode string) error
	ColorBy(target string, arrayIndex int) error
	ApplyPreset(target, preset string) error
	SetOpacity(v float64)
	SetSolidColor(name string) error
	GenerateMesh(geometryPath string, sizeFactor float64) error
	ResetCamera()
}

// run registers the viewer builtins against the engine's session,
// then loads and executes the preprocessed source.
func (e *Engine) run(source string) ([]EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}

	// Sandbox mode keeps user scripts away from the filesystem and
	// syscalls; the only side effects flow through the Session.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	e.registerBuiltins(env)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return parseZygomysError(err), nil
	}
	return nil, nil
}

func (e *Engine) registerBuiltins(env *zygo.Zlisp) {
	s := e.session

	env.AddFunction("load_file", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		path, err := oneString(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := s.LoadFile(path); err != nil {
			return zygo.SexpNull, fmt.Errorf("load_file: %w", err)
		}
		return zygo.SexpNull, nil
	})

	env.AddFunction("show_mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		s.SetMeshVisible(true)
		return zygo.SexpNull, nil
	})

	env.AddFunction("hide_mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		s.SetMeshVisible(false)
		return zygo.SexpNull, nil
	})

	env.AddFunction("set_contour_value", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := oneFloat(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		s.SetContourValue(v)
		return zygo.SexpNull, nil
	})

	env.AddFunction("set_representation", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		target, mode, err := twoStrings(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := s.SetRepresentation(target, mode); err != nil {
			return zygo.SexpNull, fmt.Errorf("set_representation: %w", err)
		}
		return zygo.SexpNull, nil
	})

	env.AddFunction("color_by", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("%s expects (target index)", name)
		}
		target, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		idx, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		if err := s.ColorBy(target, int(idx)); err != nil {
			return zygo.SexpNull, fmt.Errorf("color_by: %w", err)
		}
		return zygo.SexpNull, nil
	})

	env.AddFunction("set_preset", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		target, preset, err := twoStrings(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := s.ApplyPreset(target, preset); err != nil {
			return zygo.SexpNull, fmt.Errorf("set_preset: %w", err)
		}
		return zygo.SexpNull, nil
	})

	env.AddFunction("set_opacity", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := oneFloat(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		s.SetOpacity(v)
		return zygo.SexpNull, nil
	})

	env.AddFunction("set_solid_color", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		color, err := oneString(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := s.SetSolidColor(color); err != nil {
			return zygo.SexpNull, fmt.Errorf("set_solid_color: %w", err)
		}
		return zygo.SexpNull, nil
	})

	env.AddFunction("generate_mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 || len(args) > 2 {
			return zygo.SexpNull, fmt.Errorf("%s expects (geometry-path [size-factor])", name)
		}
		path, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		factor := 1.0
		if len(args) == 2 {
			factor, err = toFloat64(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
		}
		if err := s.GenerateMesh(path, factor); err != nil {
			return zygo.SexpNull, fmt.Errorf("generate_mesh: %w", err)
		}
		return zygo.SexpNull, nil
	})

	env.AddFunction("reset_camera", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		s.ResetCamera()
		return zygo.SexpNull, nil
	})
}

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func oneString(name string, args []zygo.Sexp) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s expects one string argument", name)
	}
	v, err := toString(args[0])
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func oneFloat(name string, args []zygo.Sexp) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s expects one numeric argument", name)
	}
	v, err := toFloat64(args[0])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func twoStrings(name string, args []zygo.Sexp) (string, string, error) {
	if len(args) != 2 {
		return "", "", fmt.Errorf("%s expects two string arguments", name)
	}
	a, err := toString(args[0])
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", name, err)
	}
	b, err := toString(args[1])
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", name, err)
	}
	return a, b, nil
}
