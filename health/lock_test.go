package health

import (
	"context"
	"strings"
	"testing"

	"github.com/jonwraymond/toolcache/lock"
)

func TestNewRegistryChecker(t *testing.T) {
	checker := NewRegistryChecker(nil, RegistryCheckerConfig{})

	if checker.config.WarnUtilization != 0.9 {
		t.Errorf("WarnUtilization = %v, want 0.9", checker.config.WarnUtilization)
	}
}

func TestNewRegistryChecker_CustomThreshold(t *testing.T) {
	checker := NewRegistryChecker(nil, RegistryCheckerConfig{
		WarnUtilization: 0.5,
	})

	if checker.config.WarnUtilization != 0.5 {
		t.Errorf("WarnUtilization = %v, want 0.5", checker.config.WarnUtilization)
	}
}

func TestNewRegistryChecker_InvalidThreshold(t *testing.T) {
	checker := NewRegistryChecker(nil, RegistryCheckerConfig{
		WarnUtilization: 1.5, // Invalid
	})
	if checker.config.WarnUtilization != 0.9 {
		t.Errorf("Invalid utilization should default to 0.9, got %v", checker.config.WarnUtilization)
	}

	checker = NewRegistryChecker(nil, RegistryCheckerConfig{
		WarnUtilization: -0.1, // Invalid
	})
	if checker.config.WarnUtilization != 0.9 {
		t.Errorf("Negative utilization should default to 0.9, got %v", checker.config.WarnUtilization)
	}
}

func TestRegistryChecker_Name(t *testing.T) {
	checker := NewRegistryChecker(nil, RegistryCheckerConfig{})

	if checker.Name() != "locks" {
		t.Errorf("Name() = %v, want 'locks'", checker.Name())
	}
}

func TestRegistryChecker_Check(t *testing.T) {
	reg := lock.NewRegistry(lock.RegistryConfig{MaxLocks: 10})
	reg.Get("/repo/a.go")
	reg.Get("/repo/b.go")

	checker := NewRegistryChecker(reg, RegistryCheckerConfig{})
	result := checker.Check(context.Background())

	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy: %s", result.Status, result.Message)
	}
	if result.Details == nil {
		t.Fatal("Details should not be nil")
	}

	// Check that expected details are present
	expectedKeys := []string{"locks", "capacity", "sweeps", "expired", "pruned"}
	for _, key := range expectedKeys {
		if _, ok := result.Details[key]; !ok {
			t.Errorf("Details missing key: %s", key)
		}
	}

	if result.Details["locks"] != 2 {
		t.Errorf("locks = %v, want 2", result.Details["locks"])
	}
	if result.Details["capacity"] != 10 {
		t.Errorf("capacity = %v, want 10", result.Details["capacity"])
	}
}

func TestRegistryChecker_CheckNearCapacity(t *testing.T) {
	reg := lock.NewRegistry(lock.RegistryConfig{MaxLocks: 10})
	paths := []string{"/a", "/b", "/c", "/d", "/e", "/f", "/g", "/h", "/i"}
	for _, p := range paths {
		reg.Get(p)
	}

	checker := NewRegistryChecker(reg, RegistryCheckerConfig{})
	result := checker.Check(context.Background())

	// 9/10 entries is at the 0.9 default threshold
	if result.Status != StatusDegraded {
		t.Errorf("Status = %v, want StatusDegraded", result.Status)
	}
	if !strings.Contains(result.Message, "nearly full") {
		t.Errorf("Message = %q, want a nearly-full message", result.Message)
	}
}

func TestRegistryChecker_CheckOverCapacity(t *testing.T) {
	ctx := context.Background()
	reg := lock.NewRegistry(lock.RegistryConfig{MaxLocks: 2})

	// Hold every entry so capacity pruning has nothing to remove
	for _, p := range []string{"/a", "/b"} {
		h := reg.Get(p)
		if err := h.Acquire(ctx); err != nil {
			t.Fatalf("Acquire(%s) failed: %v", p, err)
		}
		defer h.Release(ctx)
	}
	reg.Get("/c")

	checker := NewRegistryChecker(reg, RegistryCheckerConfig{})
	result := checker.Check(ctx)

	if result.Status != StatusDegraded {
		t.Errorf("Status = %v, want StatusDegraded", result.Status)
	}
	if !strings.Contains(result.Message, "over capacity") {
		t.Errorf("Message = %q, want an over-capacity message", result.Message)
	}
	if result.Details["locks"] != 3 {
		t.Errorf("locks = %v, want 3", result.Details["locks"])
	}
}

func TestRegistryChecker_NilRegistry(t *testing.T) {
	checker := NewRegistryChecker(nil, RegistryCheckerConfig{})

	result := checker.Check(context.Background())

	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy for nil registry", result.Status)
	}
	if result.Error != ErrCheckFailed {
		t.Errorf("Error = %v, want ErrCheckFailed", result.Error)
	}
}

func TestRegistryChecker_CheckContextCancelled(t *testing.T) {
	reg := lock.NewRegistry(lock.RegistryConfig{})
	checker := NewRegistryChecker(reg, RegistryCheckerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := checker.Check(ctx)

	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy for cancelled context", result.Status)
	}
	if result.Error != context.Canceled {
		t.Errorf("Error = %v, want context.Canceled", result.Error)
	}
}
