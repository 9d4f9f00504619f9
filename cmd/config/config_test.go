package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"github.com/infrabridge/chaincore/internal/testutil"
)

func TestLoadConfigSandbox(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	if err := os.Mkdir(sb.Path("config"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	data := []byte("vm:\n  backend: wasmer\n  max_gas_per_action: 200000\nstorage:\n  db_path: /var/lib/chaincore\nlogging:\n  level: info\n")
	if err := sb.WriteFile("config/default.yaml", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")

	if AppConfig.VM.Backend != "wasmer" {
		t.Fatalf("expected backend wasmer, got %s", AppConfig.VM.Backend)
	}
	if AppConfig.VM.MaxGasPerAction != 200000 {
		t.Fatalf("expected MaxGasPerAction 200000, got %d", AppConfig.VM.MaxGasPerAction)
	}
	if AppConfig.Storage.DBPath != "/var/lib/chaincore" {
		t.Fatalf("expected db path override")
	}
}

func TestLoadConfigOverride(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	if err := os.Mkdir(sb.Path("config"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	base := []byte("vm:\n  backend: wasmer\n  max_gas_per_action: 200000\nlogging:\n  level: info\n")
	if err := sb.WriteFile("config/default.yaml", base, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	override := []byte("logging:\n  level: debug\n")
	if err := sb.WriteFile("config/staging.yaml", override, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("staging")

	if AppConfig.Logging.Level != "debug" {
		t.Fatalf("expected logging level debug, got %s", AppConfig.Logging.Level)
	}
	if AppConfig.VM.MaxGasPerAction != 200000 {
		t.Fatalf("expected base vm config to survive merge, got %d", AppConfig.VM.MaxGasPerAction)
	}
}
