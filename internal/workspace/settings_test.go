// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"os"
	"testing"
)

func TestMaterializeSettingsDefault(t *testing.T) {
	l := NewLayout(t.TempDir())

	source, err := l.MaterializeSettings()
	if err != nil {
		t.Fatalf("MaterializeSettings() error = %v", err)
	}
	if source != "default" {
		t.Errorf("source = %q, want %q", source, "default")
	}

	env, err := l.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	want := map[string]string{
		KeyHuggingFaceToken: "",
		KeyLogLevel:         "INFO",
		KeyServerPort:       "7860",
	}
	for key, val := range want {
		got, ok := env[key]
		if !ok {
			t.Errorf("settings missing key %s", key)
			continue
		}
		if got != val {
			t.Errorf("settings %s = %q, want %q", key, got, val)
		}
	}
}

func TestMaterializeSettingsFromTemplate(t *testing.T) {
	l := NewLayout(t.TempDir())

	template := "HUGGINGFACE_TOKEN=hf_template\nLOG_LEVEL=DEBUG\nGRADIO_SERVER_PORT=9000\n"
	if err := os.WriteFile(l.SettingsTemplatePath(), []byte(template), 0o644); err != nil {
		t.Fatal(err)
	}

	source, err := l.MaterializeSettings()
	if err != nil {
		t.Fatalf("MaterializeSettings() error = %v", err)
	}
	if source != "template" {
		t.Errorf("source = %q, want %q", source, "template")
	}

	env, err := l.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if env[KeyLogLevel] != "DEBUG" {
		t.Errorf("LOG_LEVEL = %q, want template value DEBUG", env[KeyLogLevel])
	}
}

func TestMaterializeSettingsKeepsExisting(t *testing.T) {
	l := NewLayout(t.TempDir())

	existing := "HUGGINGFACE_TOKEN=hf_mine\n"
	if err := os.WriteFile(l.SettingsPath(), []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	source, err := l.MaterializeSettings()
	if err != nil {
		t.Fatalf("MaterializeSettings() error = %v", err)
	}
	if source != "existing" {
		t.Errorf("source = %q, want %q", source, "existing")
	}

	data, err := os.ReadFile(l.SettingsPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != existing {
		t.Error("MaterializeSettings() modified an existing settings file")
	}
}

func TestMissingSettingsKeys(t *testing.T) {
	l := NewLayout(t.TempDir())

	partial := "LOG_LEVEL=INFO\n"
	if err := os.WriteFile(l.SettingsPath(), []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	missing, err := l.MissingSettingsKeys()
	if err != nil {
		t.Fatalf("MissingSettingsKeys() error = %v", err)
	}
	if len(missing) != 2 {
		t.Fatalf("missing = %v, want 2 entries", missing)
	}
	for _, key := range missing {
		if key == KeyLogLevel {
			t.Error("LOG_LEVEL reported missing though present")
		}
	}
}
