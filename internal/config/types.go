// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// ContainerEngineDocker uses Docker as the container runtime.
	ContainerEngineDocker ContainerEngine = "docker"
	// ContainerEnginePodman uses Podman as the container runtime.
	ContainerEnginePodman ContainerEngine = "podman"

	// RuntimeNative runs task scripts in the host system shell.
	RuntimeNative RuntimeMode = "native"
	// RuntimeVirtual runs task scripts in the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidContainerEngine is returned when a ContainerEngine value is not recognized.
	ErrInvalidContainerEngine = errors.New("invalid container engine")
	// ErrInvalidConfigRuntimeMode is returned when a config RuntimeMode value is not recognized.
	ErrInvalidConfigRuntimeMode = errors.New("invalid runtime mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidPythonConfig is the sentinel error wrapped by InvalidPythonConfigError.
	ErrInvalidPythonConfig = errors.New("invalid python config")
	// ErrInvalidWorkspaceConfig is the sentinel error wrapped by InvalidWorkspaceConfigError.
	ErrInvalidWorkspaceConfig = errors.New("invalid workspace config")
	// ErrInvalidImageConfig is the sentinel error wrapped by InvalidImageConfigError.
	ErrInvalidImageConfig = errors.New("invalid image config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

// minVersionRe matches "MAJOR.MINOR" version requirements like "3.8".
var minVersionRe = regexp.MustCompile(`^\d+\.\d+$`)

type (
	// ContainerEngine specifies which container runtime to use.
	ContainerEngine string

	// InvalidContainerEngineError is returned when a ContainerEngine value is not recognized.
	// It wraps ErrInvalidContainerEngine for errors.Is() compatibility.
	InvalidContainerEngineError struct {
		Value ContainerEngine
	}

	// RuntimeMode specifies the execution runtime for task scripts.
	RuntimeMode string

	// InvalidConfigRuntimeModeError is returned when a config RuntimeMode value is not recognized.
	// It wraps ErrInvalidConfigRuntimeMode for errors.Is() compatibility.
	InvalidConfigRuntimeModeError struct {
		Value RuntimeMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidPythonConfigError is returned when a PythonConfig has invalid fields.
	// It wraps ErrInvalidPythonConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidPythonConfigError struct {
		FieldErrors []error
	}

	// InvalidWorkspaceConfigError is returned when a WorkspaceConfig has invalid fields.
	// It wraps ErrInvalidWorkspaceConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidWorkspaceConfigError struct {
		FieldErrors []error
	}

	// InvalidImageConfigError is returned when an ImageConfig has invalid fields.
	// It wraps ErrInvalidImageConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidImageConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// ContainerEngine specifies whether to use "docker" or "podman"
		ContainerEngine ContainerEngine `json:"container_engine" mapstructure:"container_engine"`
		// DefaultRuntime sets the global default runtime mode for tasks
		DefaultRuntime RuntimeMode `json:"default_runtime" mapstructure:"default_runtime"`
		// Python configures interpreter discovery and version requirements
		Python PythonConfig `json:"python" mapstructure:"python"`
		// Workspace configures project directory and manifest paths
		Workspace WorkspaceConfig `json:"workspace" mapstructure:"workspace"`
		// Image configures the container image build
		Image ImageConfig `json:"image" mapstructure:"image"`
		// Model configures model asset downloads
		Model ModelConfig `json:"model" mapstructure:"model"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// PythonConfig configures interpreter discovery and version requirements.
	PythonConfig struct {
		// Interpreter is the Python executable to probe (default: "python3")
		Interpreter string `json:"interpreter" mapstructure:"interpreter"`
		// MinVersion is the minimum accepted interpreter version, "MAJOR.MINOR"
		MinVersion string `json:"min_version" mapstructure:"min_version"`
	}

	// WorkspaceConfig configures project directory and manifest paths.
	WorkspaceConfig struct {
		// VenvDir is the virtual environment directory, relative to the project root
		VenvDir string `json:"venv_dir" mapstructure:"venv_dir"`
		// Manifest is the dependency manifest path, relative to the project root
		Manifest string `json:"manifest" mapstructure:"manifest"`
	}

	// ImageConfig configures the container image build.
	ImageConfig struct {
		// Name is the image name used for build and run
		Name string `json:"name" mapstructure:"name"`
		// Tag is the image tag (default: "latest")
		Tag string `json:"tag" mapstructure:"tag"`
		// BaseImage is the Python base image for both build stages
		BaseImage string `json:"base_image" mapstructure:"base_image"`
		// Port is the application port exposed by the image
		Port int `json:"port" mapstructure:"port"`
	}

	// ModelConfig configures model asset downloads.
	ModelConfig struct {
		// Repo is the Hugging Face repository to fetch GGUF files from
		Repo string `json:"repo" mapstructure:"repo"`
		// File pins a specific model file; empty selects by quantization preference
		File string `json:"file" mapstructure:"file"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidContainerEngineError.
func (e *InvalidContainerEngineError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: docker, podman)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidContainerEngineError) Unwrap() error {
	return ErrInvalidContainerEngine
}

// String returns the string representation of the ContainerEngine.
func (ce ContainerEngine) String() string { return string(ce) }

// IsValid returns whether the ContainerEngine is one of the defined engine types,
// and a list of validation errors if it is not.
func (ce ContainerEngine) IsValid() (bool, []error) {
	switch ce {
	case ContainerEngineDocker, ContainerEnginePodman:
		return true, nil
	default:
		return false, []error{&InvalidContainerEngineError{Value: ce}}
	}
}

// Error implements the error interface for InvalidConfigRuntimeModeError.
func (e *InvalidConfigRuntimeModeError) Error() string {
	return fmt.Sprintf("invalid runtime mode %q (valid: native, virtual)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidConfigRuntimeModeError) Unwrap() error {
	return ErrInvalidConfigRuntimeMode
}

// String returns the string representation of the config RuntimeMode.
func (m RuntimeMode) String() string { return string(m) }

// IsValid returns whether the config RuntimeMode is one of the defined runtime modes,
// and a list of validation errors if it is not.
func (m RuntimeMode) IsValid() (bool, []error) {
	switch m {
	case RuntimeNative, RuntimeVirtual:
		return true, nil
	default:
		return false, []error{&InvalidConfigRuntimeModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// IsValid returns whether the PythonConfig has valid fields.
// Interpreter must be non-empty and MinVersion must be "MAJOR.MINOR".
func (c PythonConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Interpreter) == "" {
		errs = append(errs, fmt.Errorf("python.interpreter must be non-empty"))
	}
	if !minVersionRe.MatchString(c.MinVersion) {
		errs = append(errs, fmt.Errorf("python.min_version %q must match MAJOR.MINOR (e.g. \"3.8\")", c.MinVersion))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidPythonConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPythonConfigError.
func (e *InvalidPythonConfigError) Error() string {
	return fmt.Sprintf("invalid python config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidPythonConfig for errors.Is() compatibility.
func (e *InvalidPythonConfigError) Unwrap() error { return ErrInvalidPythonConfig }

// IsValid returns whether the WorkspaceConfig has valid fields.
// VenvDir and Manifest must be non-empty relative paths.
func (c WorkspaceConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.VenvDir) == "" {
		errs = append(errs, fmt.Errorf("workspace.venv_dir must be non-empty"))
	}
	if strings.TrimSpace(c.Manifest) == "" {
		errs = append(errs, fmt.Errorf("workspace.manifest must be non-empty"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidWorkspaceConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidWorkspaceConfigError.
func (e *InvalidWorkspaceConfigError) Error() string {
	return fmt.Sprintf("invalid workspace config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidWorkspaceConfig for errors.Is() compatibility.
func (e *InvalidWorkspaceConfigError) Unwrap() error { return ErrInvalidWorkspaceConfig }

// IsValid returns whether the ImageConfig has valid fields.
// Name, Tag and BaseImage must be non-empty; Port must be a valid TCP port.
func (c ImageConfig) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, fmt.Errorf("image.name must be non-empty"))
	}
	if strings.TrimSpace(c.Tag) == "" {
		errs = append(errs, fmt.Errorf("image.tag must be non-empty"))
	}
	if strings.TrimSpace(c.BaseImage) == "" {
		errs = append(errs, fmt.Errorf("image.base_image must be non-empty"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("image.port %d must be in range 1-65535", c.Port))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidImageConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidImageConfigError.
func (e *InvalidImageConfigError) Error() string {
	return fmt.Sprintf("invalid image config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidImageConfig for errors.Is() compatibility.
func (e *InvalidImageConfigError) Unwrap() error { return ErrInvalidImageConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to ContainerEngine.IsValid(), DefaultRuntime.IsValid(),
// Python.IsValid(), Workspace.IsValid(), Image.IsValid(), and the UI
// color scheme. ModelConfig has no constraints (empty means "skip").
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ContainerEngine.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.DefaultRuntime.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Python.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Workspace.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Image.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ContainerEngine: ContainerEngineDocker,
		DefaultRuntime:  RuntimeNative,
		Python: PythonConfig{
			Interpreter: "python3",
			MinVersion:  "3.8",
		},
		Workspace: WorkspaceConfig{
			VenvDir:  "venv",
			Manifest: "requirements.txt",
		},
		Image: ImageConfig{
			Name:      "ragkit-app",
			Tag:       "latest",
			BaseImage: "python:3.11-slim",
			Port:      7860,
		},
		Model: ModelConfig{
			Repo: "",
			File: "",
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
