package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	return m
}

func TestSetVersion_CreatesManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bower.json")

	if err := NewBower(path, "ionic", "driftyco/ionic-bower").SetVersion("1.2.0"); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}

	m := readJSON(t, path)
	deps := m["devDependencies"].(map[string]any)
	if deps["ionic"] != "driftyco/ionic-bower#1.2.0" {
		t.Errorf("ionic dependency = %v", deps["ionic"])
	}
	if m["name"] != "HelloIonic" {
		t.Errorf("name = %v, want HelloIonic", m["name"])
	}
}

func TestSetVersion_PreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bower.json")
	os.WriteFile(path, []byte(`{
  "name": "myApp",
  "dependencies": {"angular-resource": "~1.2.17"},
  "devDependencies": {"ionic": "driftyco/ionic-bower#1.0.0", "moment": "2.8.1"}
}`), 0644)

	if err := NewBower(path, "ionic", "driftyco/ionic-bower").SetVersion("1.2.0"); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}

	m := readJSON(t, path)
	if m["name"] != "myApp" {
		t.Errorf("name = %v, want myApp", m["name"])
	}
	if _, ok := m["dependencies"].(map[string]any)["angular-resource"]; !ok {
		t.Error("dependencies lost")
	}
	devDeps := m["devDependencies"].(map[string]any)
	if devDeps["moment"] != "2.8.1" {
		t.Errorf("moment = %v, want 2.8.1", devDeps["moment"])
	}
	if devDeps["ionic"] != "driftyco/ionic-bower#1.2.0" {
		t.Errorf("ionic = %v", devDeps["ionic"])
	}
}

func TestSetVersion_InvalidManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bower.json")
	os.WriteFile(path, []byte(`{not json`), 0644)

	if err := NewBower(path, "ionic", "driftyco/ionic-bower").SetVersion("1.2.0"); err == nil {
		t.Fatal("expected error for invalid manifest")
	}
}
