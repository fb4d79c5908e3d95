package zoned

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfigValidatesRequiredSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zoned.yaml")
	contents := `
service:
  name: zoned
  refresh: true
  maxrefresh: 3600
log:
  file: ""
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	conf, err := LoadConfig(viper.New(), path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if conf.Service.Name != "zoned" {
		t.Errorf("Service.Name = %q, want %q", conf.Service.Name, "zoned")
	}
	if conf.Service.MaxRefresh != 3600 {
		t.Errorf("Service.MaxRefresh = %d, want 3600", conf.Service.MaxRefresh)
	}
}

func TestLoadConfigRejectsMissingServiceName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zoned.yaml")
	if err := os.WriteFile(path, []byte("service:\n  refresh: false\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := LoadConfig(viper.New(), path); err == nil {
		t.Fatal("expected validation error: service.name is required")
	}
}

func TestLoadZoneListSkipsInvalidEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zones.yaml")
	contents := `
zones:
  example.com.:
    file: /z/example.com.txt
    db: /z/example.com.db
  broken.com.:
    file: /z/broken.com.txt
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	zones, err := LoadZoneList(path)
	if err != nil {
		t.Fatalf("LoadZoneList: %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("got %d zones, want 1 (broken.com. is missing db and should be skipped)", len(zones))
	}
	if zones[0].Name != "example.com." {
		t.Errorf("zones[0].Name = %q, want %q", zones[0].Name, "example.com.")
	}
}
