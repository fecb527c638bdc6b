// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
)

const (
	// settingsFile is the dotenv file read by the application at startup.
	settingsFile = ".env"
	// settingsTemplateFile is the optional template copied on first setup.
	settingsTemplateFile = ".env.example"

	// KeyHuggingFaceToken authorizes model downloads from gated repos.
	KeyHuggingFaceToken = "HUGGINGFACE_TOKEN"
	// KeyLogLevel controls application log verbosity.
	KeyLogLevel = "LOG_LEVEL"
	// KeyServerPort is the port the application UI binds to.
	KeyServerPort = "GRADIO_SERVER_PORT"
)

// defaultSettings is written verbatim when no template exists.
const defaultSettings = KeyHuggingFaceToken + "=\n" +
	KeyLogLevel + "=INFO\n" +
	KeyServerPort + "=7860\n"

// SettingsKeys returns the keys every settings file is expected to carry.
func SettingsKeys() []string {
	return []string{KeyHuggingFaceToken, KeyLogLevel, KeyServerPort}
}

// MaterializeSettings ensures the settings file exists. An existing file
// is never touched. Otherwise the template is copied when present, and a
// minimal default file is written as the fallback. The returned string
// describes the source used: "existing", "template", or "default".
func (l Layout) MaterializeSettings() (string, error) {
	dst := l.SettingsPath()
	if _, err := os.Stat(dst); err == nil {
		return "existing", nil
	}

	if tpl := l.SettingsTemplatePath(); fileExists(tpl) {
		if err := copyFile(tpl, dst); err != nil {
			return "", fmt.Errorf("failed to copy settings template: %w", err)
		}
		return "template", nil
	}

	if err := os.WriteFile(dst, []byte(defaultSettings), 0o644); err != nil {
		return "", fmt.Errorf("failed to write settings file: %w", err)
	}
	return "default", nil
}

// LoadSettings parses the settings file into a key/value map.
func (l Layout) LoadSettings() (map[string]string, error) {
	env, err := godotenv.Read(l.SettingsPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return env, nil
}

// MissingSettingsKeys reports expected keys absent from the settings
// file. A key present with an empty value is not considered missing.
func (l Layout) MissingSettingsKeys() ([]string, error) {
	env, err := l.LoadSettings()
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, key := range SettingsKeys() {
		if _, ok := env[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
