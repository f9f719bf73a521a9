package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/spirv"
)

var (
	// ErrInvalidWGSL reports a source that fails to parse, lower or pass IR validation.
	ErrInvalidWGSL = errors.New("invalid wgsl")

	// ErrSPIRVGeneration reports a source that is valid WGSL but that naga's SPIR-V
	// backend could not emit.
	ErrSPIRVGeneration = errors.New("spir-v generation failed")
)

func (s *shader) Validate() ([]byte, error) {
	ast, err := naga.Parse(s.source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w: %w", s.key, ErrInvalidWGSL, err)
	}
	module, err := naga.LowerWithSource(ast, s.source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w: %w", s.key, ErrInvalidWGSL, err)
	}
	validationErrors, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w: %w", s.key, ErrInvalidWGSL, err)
	}
	if len(validationErrors) > 0 {
		return nil, fmt.Errorf("shader %s: %w: %w", s.key, ErrInvalidWGSL, validationErrors[0])
	}

	words, err := naga.GenerateSPIRV(module, spirv.Options{Version: spirv.Version1_3})
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w: %w", s.key, ErrSPIRVGeneration, err)
	}
	return words, nil
}
