package gosseract

import (
	"context"
	"errors"
	"testing"

	"github.com/jackzampolin/scriptscan/internal/engine"
)

func TestRegisteredType(t *testing.T) {
	r := engine.NewRegistryFromConfig(map[string]engine.Config{
		"local": {Type: "gosseract", TessdataDir: "/usr/share/tessdata", Enabled: true, RateLimit: 30},
		"plain": {Type: "gosseract", Enabled: true},
	}, nil)

	tests := []struct {
		name    string
		limited bool
	}{
		{"local", true},
		{"plain", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := r.Get(tt.name)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if l, ok := e.(*engine.Limited); ok != tt.limited {
				t.Fatalf("limited = %v, want %v", ok, tt.limited)
			} else if ok {
				e = l.Engine
			}
			if _, ok := e.(*Engine); !ok {
				t.Errorf("got %T, want *gosseract.Engine", e)
			}
			if e.Name() != "gosseract" {
				t.Errorf("Name() = %q", e.Name())
			}
		})
	}
}

func TestRecognizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("").Recognize(ctx, nil, "heb", engine.Settings{PSM: 6})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
