package providers

import (
	"errors"
	"testing"
)

func mockBuilder(config ProviderConfig) (Strategy, error) {
	return NewMockProvider(config.Model), nil
}

func TestSetBuilder_Build(t *testing.T) {
	builder := NewSetBuilder().
		WithProviderBuilder("gemini", mockBuilder, ProviderConfig{APIKey: "g", Model: "gemini"}).
		WithProviderBuilder("openai", mockBuilder, ProviderConfig{APIKey: "o", Model: "openai"}).
		WithProviderBuilder("qwen", mockBuilder, ProviderConfig{Model: "qwen"})

	t.Run("preserves order", func(t *testing.T) {
		set, err := builder.Build([]string{"openai", "gemini"})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if len(set) != 2 {
			t.Fatalf("len(set) = %d, want 2", len(set))
		}
		if set[0].Name() != "openai" || set[1].Name() != "gemini" {
			t.Errorf("order = [%s %s], want [openai gemini]", set[0].Name(), set[1].Name())
		}
	})

	t.Run("skips providers without credentials", func(t *testing.T) {
		set, err := builder.Build([]string{"qwen", "gemini"})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if len(set) != 1 || set[0].Name() != "gemini" {
			t.Errorf("unexpected set %v", set)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := builder.Build([]string{"gemini", "mistral"})
		if !errors.Is(err, ErrProviderNotFound) {
			t.Errorf("Build() error = %v, want ErrProviderNotFound", err)
		}
	})

	t.Run("duplicate provider", func(t *testing.T) {
		_, err := builder.Build([]string{"gemini", "gemini"})
		if !errors.Is(err, ErrProviderAlreadyRegistered) {
			t.Errorf("Build() error = %v, want ErrProviderAlreadyRegistered", err)
		}
	})

	t.Run("nothing usable", func(t *testing.T) {
		_, err := builder.Build([]string{"qwen"})
		if !errors.Is(err, ErrNoProviders) {
			t.Errorf("Build() error = %v, want ErrNoProviders", err)
		}
	})

	t.Run("builder failure", func(t *testing.T) {
		failing := NewSetBuilder().WithProviderBuilder("bad", func(ProviderConfig) (Strategy, error) {
			return nil, errors.New("bad config")
		}, ProviderConfig{APIKey: "k"})
		if _, err := failing.Build([]string{"bad"}); err == nil {
			t.Error("expected build error")
		}
	})
}

func TestParseOrder(t *testing.T) {
	got := ParseOrder(" gemini, openai ,,qwen")
	want := []string{"gemini", "openai", "qwen"}
	if len(got) != len(want) {
		t.Fatalf("ParseOrder() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ParseOrder()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
